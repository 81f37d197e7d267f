package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"barberia/internal/config"
	"barberia/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const lastColumn = "M"

var header = []interface{}{
	"ID", "Tipo", "Fecha", "Hora", "Cliente", "Teléfono", "Servicio",
	"Barbero", "Estado", "Entrega", "Descuento", "Total", "Actualizado",
}

var errRowNotFound = errors.New("reservation row not found")

// SheetsService keeps one spreadsheet row per reservation. Row numbers are
// cached by reservation id.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	rowCache      map[string]int
	cacheMu       sync.RWMutex
	clock         func() time.Time
	logger        *zerolog.Logger
}

func NewSheetsService(ctx context.Context, cfg config.GoogleConfig, logger *zerolog.Logger) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return newSheetsService(srv, cfg.SpreadsheetID, cfg.SheetName, logger), nil
}

func newSheetsService(srv *sheets.Service, spreadsheetID, sheetName string, logger *zerolog.Logger) *SheetsService {
	if sheetName == "" {
		sheetName = "Reservas"
	}
	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		rowCache:      make(map[string]int),
		clock:         time.Now,
		logger:        logger,
	}
}

func (s *SheetsService) rng(format string, args ...any) string {
	return s.sheetName + "!" + fmt.Sprintf(format, args...)
}

// TestConnection reads the first cell of the sheet.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	if _, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rng("A1")).Context(ctx).Do(); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// EnsureHeader writes the column titles into row 1.
func (s *SheetsService) EnsureHeader(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rng("A1:%s1", lastColumn), &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// StartCacheRefresh rebuilds the row cache now and then every interval.
func (s *SheetsService) StartCacheRefresh(ctx context.Context, interval time.Duration) {
	refresh := func() {
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := s.WarmUpCache(rctx); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("sheets: cache warm-up failed")
		}
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// WarmUpCache reads the id column and rebuilds the row cache.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rng("A:A")).Context(ctx).Do()
	if err != nil {
		return err
	}

	cache := make(map[string]int, len(resp.Values))
	for i, row := range resp.Values {
		if id := cellID(row); id != "" && id != header[0] {
			cache[id] = i + 1
		}
	}

	s.cacheMu.Lock()
	s.rowCache = cache
	s.cacheMu.Unlock()
	return nil
}

// UpsertReservation rewrites the reservation row or appends a new one.
func (s *SheetsService) UpsertReservation(ctx context.Context, r *models.Reservation) error {
	if r == nil {
		return errors.New("reservation is nil")
	}

	rowIdx, err := s.findRow(ctx, r.ID)
	if errors.Is(err, errRowNotFound) {
		return s.appendRow(ctx, r)
	}
	if err != nil {
		return err
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rng("A%d:%s%d", rowIdx, lastColumn, rowIdx), &sheets.ValueRange{
		Values: [][]interface{}{s.rowValues(r)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (s *SheetsService) appendRow(ctx context.Context, r *models.Reservation) error {
	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.rng("A:A"), &sheets.ValueRange{
		Values: [][]interface{}{s.rowValues(r)},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return err
	}
	if resp.Updates != nil {
		if row := rowFromRange(resp.Updates.UpdatedRange); row > 0 {
			s.setCachedRow(r.ID, row)
		}
	}
	return nil
}

// UpdateReservationStatus changes the status and updated columns of a row.
func (s *SheetsService) UpdateReservationStatus(ctx context.Context, reservationID, status string) error {
	rowIdx, err := s.findRow(ctx, reservationID)
	if err != nil {
		return err
	}

	data := []*sheets.ValueRange{
		{Range: s.rng("I%d", rowIdx), Values: [][]interface{}{{status}}},
		{Range: s.rng("M%d", rowIdx), Values: [][]interface{}{{s.clock().Format("2006-01-02 15:04:05")}}},
	}
	_, err = s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	return err
}

// DeleteReservation clears the reservation row. A row that was never
// written is not an error.
func (s *SheetsService) DeleteReservation(ctx context.Context, reservationID string) error {
	rowIdx, err := s.findRow(ctx, reservationID)
	if errors.Is(err, errRowNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, s.rng("A%d:%s%d", rowIdx, lastColumn, rowIdx), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		s.deleteCachedRow(reservationID)
	}
	return err
}

// findRow returns the 1-based row of reservationID, reading the id column
// on a cache miss.
func (s *SheetsService) findRow(ctx context.Context, reservationID string) (int, error) {
	if reservationID == "" {
		return 0, errors.New("reservation id is required")
	}
	if row, ok := s.getCachedRow(reservationID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rng("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for i, row := range resp.Values {
		if cellID(row) == reservationID {
			s.setCachedRow(reservationID, i+1)
			return i + 1, nil
		}
	}
	return 0, errRowNotFound
}

func (s *SheetsService) rowValues(r *models.Reservation) []interface{} {
	barber := r.BarberName
	if barber == "" && !r.IsProductInvoice() {
		barber = "Cualquiera"
	}
	delivery := ""
	if r.DeliveryStatus != nil {
		delivery = *r.DeliveryStatus
	}
	return []interface{}{
		r.ID,
		r.Kind,
		r.Date,
		r.Time,
		r.CustomerName,
		r.CustomerPhone,
		r.ServiceLabel,
		barber,
		r.Status,
		delivery,
		r.DiscountAmount.StringFixed(2),
		r.Total.StringFixed(2),
		s.clock().Format("2006-01-02 15:04:05"),
	}
}

func cellID(row []interface{}) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[0]))
}

// rowFromRange extracts the first row number from an A1 range such as
// "Reservas!A10:M10".
func rowFromRange(a1 string) int {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.Index(a1, ":"); i >= 0 {
		a1 = a1[:i]
	}
	digits := strings.TrimLeft(a1, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func (s *SheetsService) getCachedRow(id string) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id string, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func (s *SheetsService) deleteCachedRow(id string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, id)
}
