package donations

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
	r.Route("/donations", func(dr chi.Router) {
		dr.Post("/", createOfferHandler(svc))
		dr.Get("/", listOffersHandler(svc))
		dr.Get("/{offerID}", getOfferHandler(svc))
		dr.Patch("/{offerID}", decideOfferHandler(svc))
		dr.Delete("/{offerID}", deleteOfferHandler(svc))
	})
}

type createOfferRequest struct {
	Pet struct {
		Name        string `json:"name"`
		Species     string `json:"species"`
		Breed       string `json:"breed"`
		Sex         string `json:"sex"`
		AgeMonths   int    `json:"age_months"`
		Description string `json:"description"`
	} `json:"pet"`
	Donor struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"donor"`
	ShelterID  string            `json:"shelter_id"`
	Reason     string            `json:"reason"`
	PickupDate *time.Time        `json:"pickup_date"`
	Images     []pets.ImageInput `json:"images"`
}

type decideOfferRequest struct {
	Status     string     `json:"status"`
	PickupDate *time.Time `json:"pickup_date"`
	Notes      string     `json:"notes"`
}

type offerResponse struct {
	ID          string     `json:"id"`
	PetID       string     `json:"pet_id"`
	ShelterID   string     `json:"shelter_id"`
	DonorID     string     `json:"donor_id"`
	DonorName   string     `json:"donor_name"`
	DonorPhone  string     `json:"donor_phone"`
	DonorEmail  string     `json:"donor_email"`
	Reason      string     `json:"reason"`
	PickupDate  *time.Time `json:"pickup_date,omitempty"`
	Status      string     `json:"status"`
	ProcessedBy string     `json:"processed_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func createOfferHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req createOfferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.Create(r.Context(), actor, CreateInput{
			Pet: PetInput{
				Name:        req.Pet.Name,
				Species:     req.Pet.Species,
				Breed:       req.Pet.Breed,
				Sex:         req.Pet.Sex,
				AgeMonths:   req.Pet.AgeMonths,
				Description: req.Pet.Description,
			},
			Donor: DonorInput{
				Name:  req.Donor.Name,
				Phone: req.Donor.Phone,
				Email: req.Donor.Email,
			},
			ShelterID:  req.ShelterID,
			Reason:     req.Reason,
			PickupDate: req.PickupDate,
			Images:     pets.DecodeImages(req.Images),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toOfferResponse(out))
	}
}

func listOffersHandler(svc *Service) http.HandlerFunc {
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
		out := make([]offerResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toOfferResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOfferHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		out, err := svc.Get(r.Context(), actor, chi.URLParam(r, "offerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOfferResponse(out))
	}
}

func decideOfferHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req decideOfferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.Decide(r.Context(), actor, chi.URLParam(r, "offerID"), DecideInput{
			Status:     Status(strings.TrimSpace(req.Status)),
			PickupDate: req.PickupDate,
			Notes:      req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOfferResponse(out))
	}
}

func deleteOfferHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), actor, chi.URLParam(r, "offerID")); err != nil {
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
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrRateLimited):
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	case errors.Is(err, ErrShelterNotFound):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, pets.ErrConflict):
		http.Error(w, "pet status changed concurrently", http.StatusConflict)
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvalidInput), errors.Is(err, pets.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toOfferResponse(o DonationOffer) offerResponse {
	return offerResponse{
		ID:          o.ID,
		PetID:       o.PetID,
		ShelterID:   o.ShelterID,
		DonorID:     o.DonorID,
		DonorName:   o.DonorName,
		DonorPhone:  o.DonorPhone,
		DonorEmail:  o.DonorEmail,
		Reason:      o.Reason,
		PickupDate:  o.PickupDate,
		Status:      string(o.Status),
		ProcessedBy: o.ProcessedBy,
		ProcessedAt: o.ProcessedAt,
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en pets/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
