package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

type Service struct {
	repo    Repository
	now     func() time.Time
	limiter *rate.Limiter
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
		// Registro es el endpoint más spameable; techo generoso para dev.
		limiter: rate.NewLimiter(rate.Every(time.Second), 20),
	}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// Register da de alta user o shelter. Admins no se auto-registran:
// se crean por seed/bootstrap fuera de este core.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if !s.limiter.Allow() {
		return User{}, ErrRateLimited
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return User{}, ErrInvalidInput
	}

	role := Role(strings.TrimSpace(in.Role))
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleShelter {
		return User{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	}

	hash, salt, err := hashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		Active:       true,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate valida credenciales para el login local.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.Active {
		return User{}, ErrInvalidCredentials
	}

	ok, err := verifyPassword(password, u.PasswordSalt, u.PasswordHash)
	if err != nil || !ok {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Resolve es el Identity & Role Resolver: userID → (id, role, active).
// Lookup puro, sin lógica de negocio.
func (s *Service) Resolve(ctx context.Context, userID string) (User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Deactivate apaga una cuenta sin borrarla (bloquea login y resolución
// de shelters en donation intake).
func (s *Service) Deactivate(ctx context.Context, userID string) (User, error) {
	u, err := s.Resolve(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if !u.Active {
		return u, nil // idempotente
	}
	u.Active = false
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}
