package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"barberia/internal/export"
	"barberia/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res := req.toModel()
	if err := s.deps.Reservations.CreateReservation(r.Context(), res); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, res)
}

func (s *Server) handleCreateFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.deps.Reservations.CreateFromCart(r.Context(), req.toCart())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}

func (s *Server) handleOccupied(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	times, err := s.deps.Reservations.OccupiedTimes(r.Context(), strings.TrimSpace(q.Get("date")), strings.TrimSpace(q.Get("barberId")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if times == nil {
		times = []string{}
	}
	writeData(w, http.StatusOK, map[string]any{"occupiedTimes": times})
}

func filterFromQuery(r *http.Request) models.ReservationFilter {
	q := r.URL.Query()
	return models.ReservationFilter{
		Date:     strings.TrimSpace(q.Get("date")),
		From:     strings.TrimSpace(q.Get("from")),
		To:       strings.TrimSpace(q.Get("to")),
		Status:   strings.TrimSpace(q.Get("status")),
		BarberID: strings.TrimSpace(q.Get("barberId")),
		Kind:     strings.TrimSpace(q.Get("kind")),
	}
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Reservations.ListReservations(r.Context(), filterFromQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Reservation{}
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Reservations.GetReservation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Reservations.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, actor(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleUpdateDelivery(w http.ResponseWriter, r *http.Request) {
	var req deliveryRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Reservations.UpdateDeliveryStatus(r.Context(), chi.URLParam(r, "id"), req.DeliveryStatus)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleReplaceItems(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Reservations.ReplaceItems(r.Context(), chi.URLParam(r, "id"), req.toLines(), req.DiscountCodeID, actor(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Reservations.DeleteReservation(r.Context(), chi.URLParam(r, "id"), actor(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "Reserva eliminada"})
}

func (s *Server) handleExportReservations(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	list, err := s.deps.Reservations.ListReservations(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	period := "todas"
	if filter.From != "" || filter.To != "" {
		period = fmt.Sprintf("%s - %s", filter.From, filter.To)
	}

	var buf bytes.Buffer
	if err := export.WriteReservations(&buf, period, list); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(filter.From, filter.To)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
