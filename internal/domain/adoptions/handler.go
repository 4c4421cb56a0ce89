package adoptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption-market/internal/domain/authz"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/adoptions", func(ar chi.Router) {
		ar.Post("/", submitHandler(svc))
		ar.Get("/", listHandler(svc))
		ar.Get("/{requestID}", getHandler(svc))
		ar.Patch("/{requestID}", decideHandler(svc))

		// admin borra; el propio applicant retira (withdraw) su pending.
		ar.Delete("/{requestID}", deleteHandler(svc))
	})
}

type submitRequest struct {
	PetID        string `json:"pet_id"`
	Message      string `json:"message"`
	ContactPhone string `json:"contact_phone"`
}

type decideRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

type requestResponse struct {
	ID              string     `json:"id"`
	PetID           string     `json:"pet_id"`
	ApplicantID     string     `json:"applicant_id"`
	Message         string     `json:"message"`
	ContactPhone    string     `json:"contact_phone"`
	Status          string     `json:"status"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func submitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.Submit(r.Context(), actor, SubmitInput{
			PetID:        req.PetID,
			Message:      req.Message,
			ContactPhone: req.ContactPhone,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(out))
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		items, err := svc.List(r.Context(), actor)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]requestResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		out, err := svc.Get(r.Context(), actor, chi.URLParam(r, "requestID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(out))
	}
}

func decideHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req decideRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.Decide(r.Context(), actor, chi.URLParam(r, "requestID"), DecideInput{
			Status:          Status(strings.TrimSpace(req.Status)),
			RejectionReason: req.RejectionReason,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(out))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		requestID := chi.URLParam(r, "requestID")
		var err error
		if actor.Role == authz.RoleAdmin {
			err = svc.Delete(r.Context(), actor, requestID)
		} else {
			err = svc.Withdraw(r.Context(), actor, requestID)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func requireActor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return authz.Actor{}, false
	}
	return authz.Actor{ID: claims.UserID, Role: claims.Role}, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound), errors.Is(err, pets.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrRateLimited):
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	case errors.Is(err, pets.ErrConflict):
		// Otro applicant ganó la carrera por el pet.
		http.Error(w, "pet was just claimed", http.StatusConflict)
	case errors.Is(err, ErrDuplicatePending):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrPetNotAvailable), errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toResponse(r AdoptionRequest) requestResponse {
	return requestResponse{
		ID:              r.ID,
		PetID:           r.PetID,
		ApplicantID:     r.ApplicantID,
		Message:         r.Message,
		ContactPhone:    r.ContactPhone,
		Status:          string(r.Status),
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		CompletedAt:     r.CompletedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en pets/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
