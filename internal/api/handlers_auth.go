package api

import (
	"net/http"
	"time"

	"barberia/internal/service"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
	refreshPath   = "/api/auth"
)

func (s *Server) setSessionCookies(w http.ResponseWriter, sess *service.Session) {
	http.SetCookie(w, s.cookie(accessCookie, sess.AccessToken, "/", sess.AccessExpiresAt))
	http.SetCookie(w, s.cookie(refreshCookie, sess.RefreshToken, refreshPath, sess.RefreshExpiresAt))
}

func (s *Server) cookie(name, value, path string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   s.cfg.Auth.CookieDomain,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.Expires = expires
	}
	return c
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setSessionCookies(w, sess)
	writeData(w, http.StatusOK, sess)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(refreshCookie)
	if err != nil || c.Value == "" {
		s.writeError(w, r, service.ErrInvalidToken)
		return
	}

	sess, err := s.deps.Auth.Refresh(r.Context(), c.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setSessionCookies(w, sess)
	writeData(w, http.StatusOK, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, s.cookie(accessCookie, "", "/", time.Time{}))
	http.SetCookie(w, s.cookie(refreshCookie, "", refreshPath, time.Time{}))
	writeData(w, http.StatusOK, map[string]string{"message": "Sesión cerrada"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	user, err := s.deps.Auth.Me(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user)
}
