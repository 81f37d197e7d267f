package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"barberia/internal/config"

	"github.com/rs/zerolog"
)

const (
	backupPrefix = "barberia_"
	backupSuffix = ".db"
)

// BackupService snapshots the embedded sqlite database on an interval.
// Postgres deployments rely on their own backup tooling.
type BackupService struct {
	dbPath string
	cfg    config.BackupConfig
	clock  func() time.Time
	logger *zerolog.Logger
}

func NewBackupService(dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &BackupService{dbPath: dbPath, cfg: cfg, clock: time.Now, logger: logger}
}

// Start takes a snapshot immediately and then once per interval until ctx ends.
func (s *BackupService) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}
	s.logger.Info().Dur("interval", s.cfg.Interval).Str("path", s.cfg.StoragePath).Msg("Backup service started")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.cycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *BackupService) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Backup failed")
	}
	s.CleanupOldBackups()
}

// PerformBackup writes a consistent copy with VACUUM INTO, falling back to a
// plain file copy on sqlite builds that lack it.
func (s *BackupService) PerformBackup(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.StoragePath, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	target := filepath.Join(s.cfg.StoragePath, backupPrefix+s.clock().Format("20060102_150405")+backupSuffix)

	if err := s.vacuumInto(ctx, target); err != nil {
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, copying the file instead")
		if err := copyFile(s.dbPath, target); err != nil {
			return fmt.Errorf("copy database: %w", err)
		}
	}
	s.logger.Info().Str("file", filepath.Base(target)).Msg("Backup written")
	return nil
}

func (s *BackupService) vacuumInto(ctx context.Context, target string) error {
	src, err := sql.Open(driverSQLite, s.dbPath)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = src.ExecContext(ctx, "VACUUM INTO '"+strings.ReplaceAll(target, "'", "''")+"'")
	return err
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Backups lists snapshot files in the storage directory, newest first.
func (s *BackupService) Backups() ([]os.FileInfo, error) {
	entries, err := os.ReadDir(s.cfg.StoragePath)
	if err != nil {
		return nil, err
	}
	var out []os.FileInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime().After(out[j].ModTime()) })
	return out, nil
}

// CleanupOldBackups removes snapshots older than the retention window.
func (s *BackupService) CleanupOldBackups() {
	if s.cfg.RetentionDays <= 0 {
		return
	}
	backups, err := s.Backups()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list backups for cleanup")
		return
	}

	cutoff := s.clock().AddDate(0, 0, -s.cfg.RetentionDays)
	for _, b := range backups {
		if !b.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.cfg.StoragePath, b.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", b.Name()).Msg("Failed to delete old backup")
			continue
		}
		s.logger.Info().Str("file", b.Name()).Msg("Old backup deleted")
	}
}
