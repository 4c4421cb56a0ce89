package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-market/internal/domain/authz"
	"pet-adoption-market/internal/platform/imaging"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrForbidden    = errors.New("forbidden")

	// ErrConflict señala una transición condicional perdida (el status ya no
	// era el esperado). Se distingue de un invalid-state de negocio para que
	// el caller pueda decidir reintentar.
	ErrConflict = errors.New("conflicting status update")
)

// Techos de imágenes para listados directos de shelters.
const (
	listingMaxImageBytes = 5 << 20
	listingMaxImages     = 5
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Sex         string
	AgeMonths   int
	Description string
	Images      []imaging.File
}

// Create registra un listing directo (shelter o admin). Nace `available`:
// no pasa por donation intake.
func (s *Service) Create(ctx context.Context, actor authz.Actor, in CreateInput) (Pet, error) {
	if d := authz.Authorize(actor, authz.ActionCreateListing, authz.Resource{}); !d.Allowed {
		return Pet{}, ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	sp, err := parseSpecies(in.Species)
	if err != nil {
		return Pet{}, err
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		UploadedBy:  actor.ID,
		Name:        strings.TrimSpace(in.Name),
		Species:     sp,
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         parseSex(in.Sex),
		AgeMonths:   in.AgeMonths,
		Description: strings.TrimSpace(in.Description),
		Images: imaging.EncodeAll(in.Images, imaging.Limits{
			MaxFileBytes: listingMaxImageBytes,
			MaxFiles:     listingMaxImages,
		}),
		AdoptionStatus: StatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// IntakeInput es la creación indirecta vía donation offer: el pet nace
// `pending` (intake-pending, todavía no listado).
type IntakeInput struct {
	UploaderID  string
	Name        string
	Species     string
	Breed       string
	Sex         string
	AgeMonths   int
	Description string
	Images      []string // ya encoded por el workflow de donación
}

func (s *Service) CreateIntake(ctx context.Context, in IntakeInput) (Pet, error) {
	if strings.TrimSpace(in.UploaderID) == "" || strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	sp, err := parseSpecies(in.Species)
	if err != nil {
		return Pet{}, err
	}

	now := s.now()
	p := Pet{
		ID:             uuid.NewString(),
		UploadedBy:     strings.TrimSpace(in.UploaderID),
		Name:           strings.TrimSpace(in.Name),
		Species:        sp,
		Breed:          strings.TrimSpace(in.Breed),
		Sex:            parseSex(in.Sex),
		AgeMonths:      in.AgeMonths,
		Description:    strings.TrimSpace(in.Description),
		Images:         in.Images,
		AdoptionStatus: StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListAvailable es el listado público: solo mascotas adoptables.
func (s *Service) ListAvailable(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx, ListFilter{Status: StatusAvailable})
}

// ListByUploader devuelve todos los listings de un shelter, en cualquier status.
func (s *Service) ListByUploader(ctx context.Context, uploaderID string) ([]Pet, error) {
	uploaderID = strings.TrimSpace(uploaderID)
	if uploaderID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, ListFilter{UploadedBy: uploaderID})
}

// TransitionStatus expone el CAS del repo a los workflows.
func (s *Service) TransitionStatus(ctx context.Context, id string, from, to AdoptionStatus) error {
	return s.repo.UpdateStatus(ctx, id, from, to)
}

// ForceStatus setea el status sin condición. Solo para decisiones ya
// autorizadas (approve/reject/re-open), donde el resultado debe imponerse
// sin importar cuántos re-opens hubo antes.
func (s *Service) ForceStatus(ctx context.Context, id string, to AdoptionStatus) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.AdoptionStatus = to
	p.UpdatedAt = s.now()
	return s.repo.Update(ctx, p)
}

// Delete borra un listing (cleanup de huérfanos de donación rechazada).
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// OwnerOf expone el uploader de una mascota.
// Evita que otros módulos dependan del struct Pet completo.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.UploadedBy, nil
}

func parseSpecies(raw string) (Species, error) {
	switch Species(strings.ToLower(strings.TrimSpace(raw))) {
	case SpeciesDog:
		return SpeciesDog, nil
	case SpeciesCat:
		return SpeciesCat, nil
	case SpeciesOther, "":
		return SpeciesOther, nil
	default:
		return "", ErrInvalidInput
	}
}

func parseSex(raw string) Sex {
	switch Sex(strings.ToLower(strings.TrimSpace(raw))) {
	case SexMale:
		return SexMale
	case SexFemale:
		return SexFemale
	default:
		return SexUnknown
	}
}
