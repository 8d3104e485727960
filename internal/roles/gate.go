package roles

import (
	"github.com/rosvybory/observadores/internal/repo"
)

// Scope é o conjunto de papéis que um ator pode conceder ou retirar.
// Um Scope nil não restringe nada (contexto de sistema).
type Scope struct {
	allowed map[int64]repo.Role
}

// NewScope cria escopo restrito aos papéis informados.
func NewScope(roles ...repo.Role) *Scope {
	s := &Scope{allowed: make(map[int64]repo.Role, len(roles))}
	for _, r := range roles {
		s.allowed[r.ID] = r
	}
	return s
}

// Allows informa se o papel está no escopo.
func (s *Scope) Allows(roleID int64) bool {
	if s == nil {
		return true
	}
	_, ok := s.allowed[roleID]
	return ok
}

// Roles devolve os papéis do escopo; nil para escopo irrestrito.
func (s *Scope) Roles() []repo.Role {
	if s == nil {
		return nil
	}
	roles := make([]repo.Role, 0, len(s.allowed))
	for _, r := range s.allowed {
		roles = append(roles, r)
	}
	return roles
}

// Check valida todas as alterações de uma vez: qualquer papel fora do escopo rejeita o conjunto.
func (s *Scope) Check(changes []Assignment) error {
	if s == nil {
		return nil
	}
	var offending []string
	seen := make(map[int64]struct{})
	for _, c := range changes {
		if s.Allows(c.Role.ID) {
			continue
		}
		if _, dup := seen[c.Role.ID]; dup {
			continue
		}
		seen[c.Role.ID] = struct{}{}
		offending = append(offending, c.Role.DisplayName())
	}
	if len(offending) > 0 {
		return &ForbiddenError{Roles: offending}
	}
	return nil
}
