package pets

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption-market/internal/domain/authz"
	"pet-adoption-market/internal/middleware"
	"pet-adoption-market/internal/platform/imaging"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		// Listado directo (shelter o admin)
		pr.Post("/", createPetHandler(svc))

		// Público: solo mascotas available. Con ?mine=1, los listings
		// propios del caller en cualquier status.
		pr.Get("/", listPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
	})
}

// ImageInput es el binario subido, base64 plano + mime declarado.
type ImageInput struct {
	Data string `json:"data"`
	MIME string `json:"mime"`
}

type createPetRequest struct {
	Name        string       `json:"name"`
	Species     string       `json:"species"`
	Breed       string       `json:"breed"`
	Sex         string       `json:"sex"`
	AgeMonths   int          `json:"age_months"`
	Description string       `json:"description"`
	Images      []ImageInput `json:"images"`
}

type petResponse struct {
	ID             string    `json:"id"`
	UploadedBy     string    `json:"uploaded_by"`
	Name           string    `json:"name"`
	Species        string    `json:"species"`
	Breed          string    `json:"breed"`
	Sex            string    `json:"sex"`
	AgeMonths      int       `json:"age_months"`
	Description    string    `json:"description"`
	Images         []string  `json:"images"`
	AdoptionStatus string    `json:"adoption_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), actorFrom(claims.UserID, claims.Role), CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Sex:         req.Sex,
			AgeMonths:   req.AgeMonths,
			Description: req.Description,
			Images:      DecodeImages(req.Images),
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			items []Pet
			err   error
		)

		if r.URL.Query().Get("mine") == "1" {
			claims, ok := middleware.GetClaims(r.Context())
			if !ok || strings.TrimSpace(claims.UserID) == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			items, err = svc.ListByUploader(r.Context(), claims.UserID)
		} else {
			items, err = svc.ListAvailable(r.Context())
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	// Available es público; un pet no listado (intake-pending, adopted)
	// solo lo ven su uploader y admins.
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		p, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		if p.AdoptionStatus != StatusAvailable {
			claims, ok := middleware.GetClaims(r.Context())
			if !ok || (claims.UserID != p.UploadedBy && claims.Role != authz.RoleAdmin) {
				// 404 en vez de 403: no filtramos la existencia de intakes.
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// DecodeImages convierte el payload base64 en archivos para el encoder.
// Entradas indecodificables se descartan, igual que las sobredimensionadas.
func DecodeImages(in []ImageInput) []imaging.File {
	out := make([]imaging.File, 0, len(in))
	for _, img := range in {
		raw, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			continue
		}
		out = append(out, imaging.File{Data: raw, MIME: img.MIME})
	}
	return out
}

func actorFrom(userID, role string) authz.Actor {
	return authz.Actor{ID: userID, Role: role}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:             p.ID,
		UploadedBy:     p.UploadedBy,
		Name:           p.Name,
		Species:        string(p.Species),
		Breed:          p.Breed,
		Sex:            string(p.Sex),
		AgeMonths:      p.AgeMonths,
		Description:    p.Description,
		Images:         p.Images,
		AdoptionStatus: string(p.AdoptionStatus),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
