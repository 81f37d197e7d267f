package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// respond writes data with status, or the mapped error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, status, data)
}

func (s *Server) handlePublicBarbers(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.PublicBarbers(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handlePublicServices(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.PublicServices(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handlePublicProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.PublicProducts(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handlePublicOffers(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.PublicOffers(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Settings.List(r.Context())
	s.respond(w, r, http.StatusOK, settings, err)
}

func (s *Server) handleUpsertSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	setting, err := s.deps.Settings.Upsert(r.Context(), chi.URLParam(r, "key"), req.Value)
	s.respond(w, r, http.StatusOK, setting, err)
}

func (s *Server) handleValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	quote, err := s.deps.Discounts.Validate(r.Context(), req.Code, *req.TotalAmount)
	s.respond(w, r, http.StatusOK, quote, err)
}

func deleted(w http.ResponseWriter) {
	writeData(w, http.StatusOK, map[string]string{"message": "Eliminado"})
}

// Barbers

func (s *Server) handleAdminListBarbers(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.ListBarbers(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handleAdminGetBarber(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Catalog.GetBarber(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, b, err)
}

func (s *Server) handleAdminCreateBarber(w http.ResponseWriter, r *http.Request) {
	var req barberRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	b := req.toModel("")
	s.respond(w, r, http.StatusCreated, b, s.deps.Catalog.CreateBarber(r.Context(), b))
}

func (s *Server) handleAdminUpdateBarber(w http.ResponseWriter, r *http.Request) {
	var req barberRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	b := req.toModel(chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, b, s.deps.Catalog.UpdateBarber(r.Context(), b))
}

func (s *Server) handleAdminDeleteBarber(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.DeleteBarber(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	deleted(w)
}

// Services

func (s *Server) handleAdminListServices(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.ListServices(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handleAdminGetService(w http.ResponseWriter, r *http.Request) {
	svc, err := s.deps.Catalog.GetService(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, svc, err)
}

func (s *Server) handleAdminCreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	svc := req.toModel("")
	s.respond(w, r, http.StatusCreated, svc, s.deps.Catalog.CreateService(r.Context(), svc))
}

func (s *Server) handleAdminUpdateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	svc := req.toModel(chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, svc, s.deps.Catalog.UpdateService(r.Context(), svc))
}

func (s *Server) handleAdminDeleteService(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	deleted(w)
}

// Products

func (s *Server) handleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.ListProducts(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handleAdminGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, p, err)
}

func (s *Server) handleAdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p := req.toModel("")
	s.respond(w, r, http.StatusCreated, p, s.deps.Catalog.CreateProduct(r.Context(), p))
}

func (s *Server) handleAdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p := req.toModel(chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, p, s.deps.Catalog.UpdateProduct(r.Context(), p))
}

func (s *Server) handleAdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	deleted(w)
}

// Offers

func (s *Server) handleAdminListOffers(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Catalog.ListOffers(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handleAdminGetOffer(w http.ResponseWriter, r *http.Request) {
	o, err := s.deps.Catalog.GetOffer(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, o, err)
}

func (s *Server) handleAdminCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	o := req.toModel("")
	s.respond(w, r, http.StatusCreated, o, s.deps.Catalog.CreateOffer(r.Context(), o))
}

func (s *Server) handleAdminUpdateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	o := req.toModel(chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, o, s.deps.Catalog.UpdateOffer(r.Context(), o))
}

func (s *Server) handleAdminDeleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Catalog.DeleteOffer(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	deleted(w)
}

// Discount codes

func (s *Server) handleAdminListDiscounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Discounts.List(r.Context())
	s.respond(w, r, http.StatusOK, list, err)
}

func (s *Server) handleAdminGetDiscount(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Discounts.Get(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, d, err)
}

func (s *Server) handleAdminCreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	d := req.toModel("")
	s.respond(w, r, http.StatusCreated, d, s.deps.Discounts.Create(r.Context(), d))
}

func (s *Server) handleAdminUpdateDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	d := req.toModel(chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, d, s.deps.Discounts.Update(r.Context(), d))
}

func (s *Server) handleAdminDeleteDiscount(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Discounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	deleted(w)
}
