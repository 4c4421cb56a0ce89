package authz

import "strings"

// Roles conocidos. Cualquier otro valor se trata como rol insuficiente.
const (
	RoleUser    = "user"
	RoleShelter = "shelter"
	RoleAdmin   = "admin"
)

// Action identifica la operación de workflow que se quiere ejecutar.
type Action string

const (
	ActionCreateListing    Action = "pet:create"
	ActionSubmitAdoption   Action = "adoption:submit"
	ActionDecideAdoption   Action = "adoption:decide"
	ActionWithdrawAdoption Action = "adoption:withdraw"
	ActionDeleteAdoption   Action = "adoption:delete"
	ActionCreateOffer      Action = "donation:create"
	ActionDecideOffer      Action = "donation:decide"
	ActionDeleteOffer      Action = "donation:delete"
)

// Actor es quien intenta la acción.
type Actor struct {
	ID   string
	Role string
}

// Resource lleva solo los campos de ownership que las reglas necesitan.
// El caller llena lo que aplique; campos vacíos no matchean nunca.
type Resource struct {
	PetOwnerID  string // uploadedBy del Pet referenciado
	ApplicantID string // applicant de un AdoptionRequest
	ShelterID   string // shelter destino de un DonationOffer
}

// Reason distingue por qué se negó (para mapear 401 vs 403 arriba).
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonWrongOwner       Reason = "wrong_owner"
)

// Decision es el resultado puro de la evaluación. Nunca hay side effects
// ni panics: siempre se devuelve un valor.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r Reason) Decision { return Decision{Allowed: false, Reason: r} }

// policy es la interfaz que implementa cada variante de rol.
// Reemplaza los checks inline de rol dispersos por un único dispatch.
type policy interface {
	Authorize(actor Actor, action Action, res Resource) Decision
}

var policies = map[string]policy{
	RoleUser:    userPolicy{},
	RoleShelter: shelterPolicy{},
	RoleAdmin:   adminPolicy{},
}

// Authorize evalúa (actor, action, resource) una sola vez por operación.
// Los workflows la consultan antes de cualquier mutación.
func Authorize(actor Actor, action Action, res Resource) Decision {
	if strings.TrimSpace(actor.ID) == "" {
		return deny(ReasonUnauthenticated)
	}
	p, ok := policies[actor.Role]
	if !ok {
		return deny(ReasonInsufficientRole)
	}
	return p.Authorize(actor, action, res)
}

// adminPolicy: allow para todas las acciones de este core.
type adminPolicy struct{}

func (adminPolicy) Authorize(_ Actor, _ Action, _ Resource) Decision {
	return allow()
}

// userPolicy: adoptante/donante. Crea requests y offers; solo puede
// retirar su propio request pendiente. Nunca decide estados.
type userPolicy struct{}

func (userPolicy) Authorize(actor Actor, action Action, res Resource) Decision {
	switch action {
	case ActionSubmitAdoption, ActionCreateOffer:
		return allow()
	case ActionWithdrawAdoption:
		if res.ApplicantID == actor.ID {
			return allow()
		}
		return deny(ReasonWrongOwner)
	default:
		return deny(ReasonInsufficientRole)
	}
}

// shelterPolicy: decide sobre requests de sus propias mascotas y sobre
// offers dirigidas a él. También lista mascotas directamente.
type shelterPolicy struct{}

func (shelterPolicy) Authorize(actor Actor, action Action, res Resource) Decision {
	switch action {
	case ActionCreateListing, ActionCreateOffer:
		return allow()
	case ActionDecideAdoption:
		if res.PetOwnerID == actor.ID {
			return allow()
		}
		return deny(ReasonWrongOwner)
	case ActionDecideOffer:
		if res.ShelterID == actor.ID {
			return allow()
		}
		return deny(ReasonWrongOwner)
	case ActionWithdrawAdoption:
		if res.ApplicantID == actor.ID {
			return allow()
		}
		return deny(ReasonWrongOwner)
	default:
		// Deletes son admin-only.
		return deny(ReasonInsufficientRole)
	}
}
