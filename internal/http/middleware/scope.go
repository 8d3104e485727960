package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rosvybory/observadores/internal/roles"
	"github.com/rosvybory/observadores/internal/service"
)

// ScopeResolver deriva o escopo de papéis do ator.
type ScopeResolver interface {
	ScopeFor(ctx context.Context, actorID int64) (*roles.Scope, error)
}

type actorScope struct {
	scope *roles.Scope
}

// ActorScope carrega o escopo do usuário autenticado para as rotas que alteram contas.
func ActorScope(resolver ScopeResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := GetUserID(r.Context())
			if actorID == 0 {
				writeError(w, http.StatusUnauthorized, "AUTH", "subject inválido")
				return
			}

			scope, err := resolver.ScopeFor(r.Context(), actorID)
			if err != nil {
				if errors.Is(err, service.ErrForbidden) {
					writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
					return
				}
				log.Error().Err(err).Int64("actor_id", actorID).Msg("falha ao carregar escopo do ator")
				writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyScope, actorScope{scope: scope})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetScope devolve o escopo do ator; ok é falso quando ActorScope não foi aplicado.
// Um escopo nil com ok verdadeiro não restringe nada.
func GetScope(ctx context.Context) (*roles.Scope, bool) {
	val, ok := ctx.Value(ContextKeyScope).(actorScope)
	return val.scope, ok
}
