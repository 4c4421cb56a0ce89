package adoptions

import "time"

// Status del request de adopción.
// @Enum pending, approved, rejected, completed
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// AdoptionRequest es la postulación de un adoptante sobre un Pet available.
// Invariante: a lo sumo UN request pending por pet a la vez.
type AdoptionRequest struct {
	ID          string
	PetID       string
	ApplicantID string

	Message      string
	ContactPhone string

	Status Status

	// Poblados solo en la transición que corresponde.
	ApprovedBy      string
	ApprovedAt      *time.Time
	CompletedAt     *time.Time
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}
