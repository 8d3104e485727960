package service

import (
	"context"
	"errors"

	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
)

var (
	// ErrForbidden indica ausência de permissão.
	ErrForbidden = errors.New("acesso negado")
)

// assignable lista, por papel do ator, os papéis que ele pode conceder ou retirar.
// admin não aparece: é irrestrito.
var assignable = map[string][]string{
	roles.Central:     {roles.Municipal, roles.Territorial, roles.Mobile, roles.Observer},
	roles.Municipal:   {roles.Territorial, roles.Mobile, roles.Observer},
	roles.Territorial: {roles.Mobile, roles.Observer},
	roles.FederalRepr: {roles.Observer},
}

type actorRepository interface {
	ListUserRoles(ctx context.Context, userID int64) ([]repo.UserRole, error)
}

// RBACService deriva o escopo de papéis de cada ator.
type RBACService struct {
	repo    actorRepository
	catalog roles.Resolver
}

// NewRBACService cria nova instância.
func NewRBACService(r actorRepository, catalog roles.Resolver) *RBACService {
	return &RBACService{repo: r, catalog: catalog}
}

// ScopeFor devolve o escopo do ator; nil para administradores.
// Ator sem nenhum papel privilegiado recebe ErrForbidden.
func (s *RBACService) ScopeFor(ctx context.Context, actorID int64) (*roles.Scope, error) {
	actorRoles, err := s.repo.ListUserRoles(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var (
		slugs      []string
		privileged bool
	)
	seen := make(map[string]struct{})
	for _, ur := range actorRoles {
		if ur.Role.Slug == roles.Admin {
			return nil, nil
		}
		grants, ok := assignable[ur.Role.Slug]
		if !ok {
			continue
		}
		privileged = true
		for _, slug := range grants {
			if _, dup := seen[slug]; dup {
				continue
			}
			seen[slug] = struct{}{}
			slugs = append(slugs, slug)
		}
	}
	if !privileged {
		return nil, ErrForbidden
	}

	allowed := make([]repo.Role, 0, len(slugs))
	for _, slug := range slugs {
		role, err := s.catalog.RoleBySlug(ctx, slug)
		if errors.Is(err, roles.ErrRoleNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		allowed = append(allowed, role)
	}
	return roles.NewScope(allowed...), nil
}
