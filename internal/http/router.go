package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rosvybory/observadores/internal/account"
	"github.com/rosvybory/observadores/internal/auth"
	"github.com/rosvybory/observadores/internal/config"
	httpmiddleware "github.com/rosvybory/observadores/internal/http/middleware"
	"github.com/rosvybory/observadores/internal/merge"
	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
	"github.com/rosvybory/observadores/internal/service"
)

// Authenticator autentica por telefone e senha.
type Authenticator interface {
	Login(ctx context.Context, rawPhone, password string) (*service.LoginResult, error)
}

// UserManager reúne as operações sobre contas expostas pela API.
type UserManager interface {
	GetUser(ctx context.Context, id int64) (*account.User, error)
	CreateFromApplications(ctx context.Context, scope *roles.Scope, appIDs []int64) (*account.User, error)
	UpdateFromApplications(ctx context.Context, scope *roles.Scope, userID int64, appIDs []int64, updateCurrentRoles bool) (*account.User, error)
	UpdateRoles(ctx context.Context, scope *roles.Scope, userID int64, roleIDs []int64) (*account.User, error)
	ResetPassword(ctx context.Context, rawPhone string) error
}

// RegionLister lista a hierarquia de regiões.
type RegionLister interface {
	List(ctx context.Context, kind int) ([]repo.Region, error)
}

// Dependencies agrupa os serviços usados pelos handlers.
// Checks alimenta o /ready; a chave nomeia a dependência.
type Dependencies struct {
	JWT     *auth.JWTManager
	Auth    Authenticator
	Users   UserManager
	Regions RegionLister
	Scopes  httpmiddleware.ScopeResolver
	Checks  map[string]func(context.Context) error
	Metrics http.Handler
}

// Handler concentra os handlers HTTP.
type Handler struct {
	auth          Authenticator
	users         UserManager
	regions       RegionLister
	checks        map[string]func(context.Context) error
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	h := &Handler{
		auth:          deps.Auth,
		users:         deps.Users,
		regions:       deps.Regions,
		checks:        deps.Checks,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/healthz", h.Health)
	r.Get("/ready", h.Ready)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/auth", func(a chi.Router) {
		a.Use(httpmiddleware.IPRateLimit(h.authLimiter))
		a.Post("/login", h.Login)
		a.Post("/password/reset", h.ResetPassword)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(deps.JWT))
		private.Use(httpmiddleware.RequireAnyRole(roles.LoginRoles...))
		private.Use(httpmiddleware.UserRateLimit(h.publicLimiter))

		private.Get("/regions", h.ListRegions)
		private.Get("/users/{id}", h.GetUser)

		private.Group(func(editor chi.Router) {
			editor.Use(httpmiddleware.ActorScope(deps.Scopes))
			editor.Post("/users", h.CreateUser)
			editor.Post("/users/{id}/applications", h.UpdateUserFromApplications)
			editor.Put("/users/{id}/roles", h.UpdateUserRoles)
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := make(map[string]any)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", failures)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// writeServiceError traduz erros de domínio para o envelope padrão.
func writeServiceError(w http.ResponseWriter, err error) {
	var forbidden *roles.ForbiddenError
	switch {
	case errors.As(err, &forbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", forbidden.Error(), map[string]any{"roles": forbidden.Roles})
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, repo.ErrPhoneTaken):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, merge.ErrInvalidInput),
		errors.Is(err, roles.ErrRoleNotFound),
		errors.Is(err, account.ErrInvalidPhone),
		errors.Is(err, account.ErrInvalidYearBorn),
		errors.Is(err, account.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidRegionKind):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("erro inesperado")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
