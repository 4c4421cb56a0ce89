package router

import (
	"database/sql"
	"net/http"
	"os"

	"pet-adoption-market/internal/adapters/auth/gatekeeper"
	"pet-adoption-market/internal/adapters/auth/local"
	mem "pet-adoption-market/internal/adapters/storage/memory"
	pg "pet-adoption-market/internal/adapters/storage/postgres"
	"pet-adoption-market/internal/domain/adoptions"
	"pet-adoption-market/internal/domain/donations"
	"pet-adoption-market/internal/domain/identity"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/middleware"
	"pet-adoption-market/internal/platform/logger"
	"pet-adoption-market/internal/ports/auth"

	_ "pet-adoption-market/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: verifier externo (gatekeeper). Si es nil se usa el token
	// store local, y /auth/login queda habilitado.
	AuthVerifier auth.AuthVerifier

	// Opcional: si viene, usa Postgres. Si no, intenta DB_DSN y cae a
	// in-memory.
	DB *sql.DB

	Logger *logger.Logger

	// Habilita los headers X-Debug-User-ID / X-Debug-Role (dev y tests).
	AllowDebugHeaders bool
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}
	r.Use(middleware.RequestLog(log))

	// Verifier: externo si lo configuraron, si no el store local. El store
	// local además emite tokens para /auth/login.
	var issuer auth.TokenIssuer
	verifier := opts.AuthVerifier
	if verifier == nil {
		if base := os.Getenv("GATEKEEPER_URL"); base != "" {
			client, err := gatekeeper.NewClient(gatekeeper.Config{
				BaseURL: base,
				APIKey:  os.Getenv("GATEKEEPER_API_KEY"),
			})
			if err == nil {
				verifier = gatekeeper.NewVerifier(client)
			}
		}
	}
	if verifier == nil {
		store := local.NewStore()
		verifier = store
		issuer = store
	}
	r.Use(middleware.AuthContext(verifier, opts.AllowDebugHeaders))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		petRepo      pets.Repository
		adoptionRepo adoptions.Repository
		donationRepo donations.Repository
		userRepo     identity.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		petRepo = pg.NewPetsRepo(db)
		adoptionRepo = pg.NewAdoptionsRepo(db)
		donationRepo = pg.NewDonationsRepo(db)
		userRepo = pg.NewUsersRepo(db)
	} else {
		petRepo = mem.NewPetRepo()
		adoptionRepo = mem.NewAdoptionRepo()
		donationRepo = mem.NewDonationRepo()
		userRepo = mem.NewUserRepo()
	}

	// Services por módulo
	identitySvc := identity.NewService(userRepo)
	petsSvc := pets.NewService(petRepo)
	adoptionsSvc := adoptions.NewService(adoptionRepo, petsSvc)
	donationsSvc := donations.NewService(donationRepo, petsSvc, identitySvc)

	// Rutas por módulo
	identity.RegisterRoutes(r, identitySvc, issuer)
	pets.RegisterRoutes(r, petsSvc)
	adoptions.RegisterRoutes(r, adoptionsSvc)
	donations.RegisterRoutes(r, donationsSvc)

	return r
}
