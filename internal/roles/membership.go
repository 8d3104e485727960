package roles

import (
	"context"

	"github.com/rosvybory/observadores/internal/repo"
)

// Resolver resolve papéis gerais pelo slug ou identificador.
type Resolver interface {
	RoleBySlug(ctx context.Context, slug string) (repo.Role, error)
	RoleByID(ctx context.Context, id int64) (repo.Role, error)
}

// Assignment é um vínculo (usuário, papel) pendente ou persistido.
type Assignment struct {
	ID      int64
	Role    repo.Role
	removed bool
}

// IsNew indica vínculo ainda não persistido.
func (a Assignment) IsNew() bool {
	return a.ID == 0
}

// MarkedForRemoval indica vínculo que será apagado no commit.
func (a Assignment) MarkedForRemoval() bool {
	return a.removed
}

// Membership controla os papéis gerais de um usuário até o commit.
// O cache de HasRole pertence à instância e precisa ser invalidado a cada commit.
type Membership struct {
	catalog     Resolver
	assignments []*Assignment
	cache       map[string]bool
}

// NewMembership monta a associação a partir dos vínculos persistidos.
func NewMembership(catalog Resolver, persisted []repo.UserRole) *Membership {
	m := &Membership{catalog: catalog}
	m.Reload(persisted)
	return m
}

// Reload substitui o estado pelos vínculos persistidos e invalida o cache.
func (m *Membership) Reload(persisted []repo.UserRole) {
	m.assignments = make([]*Assignment, 0, len(persisted))
	for _, ur := range persisted {
		m.assignments = append(m.assignments, &Assignment{ID: ur.ID, Role: ur.Role})
	}
	m.Invalidate()
}

// Invalidate descarta o cache de HasRole.
func (m *Membership) Invalidate() {
	m.cache = make(map[string]bool)
}

// HasRole verifica o papel pelo slug, memorizando a resposta.
func (m *Membership) HasRole(slug string) bool {
	if v, ok := m.cache[slug]; ok {
		return v
	}
	found := false
	for _, a := range m.assignments {
		if a.Role.Slug == slug && !a.removed {
			found = true
			break
		}
	}
	m.cache[slug] = found
	return found
}

// HasAnyRole indica se ao menos um dos slugs está atribuído.
func (m *Membership) HasAnyRole(slugs ...string) bool {
	for _, slug := range slugs {
		if m.HasRole(slug) {
			return true
		}
	}
	return false
}

// AddRole atribui o papel; não faz nada se já estiver presente.
func (m *Membership) AddRole(ctx context.Context, slug string) error {
	if m.HasRole(slug) {
		return nil
	}
	role, err := m.catalog.RoleBySlug(ctx, slug)
	if err != nil {
		return err
	}
	delete(m.cache, slug)

	for _, a := range m.assignments {
		if a.Role.ID == role.ID && a.removed {
			a.removed = false
			return nil
		}
	}
	m.assignments = append(m.assignments, &Assignment{Role: role})
	return nil
}

// RemoveRole marca o papel para remoção; a exclusão acontece no commit.
func (m *Membership) RemoveRole(ctx context.Context, slug string) error {
	role, err := m.catalog.RoleBySlug(ctx, slug)
	if err != nil {
		return err
	}
	m.drop(func(a *Assignment) bool { return a.Role.ID == role.ID })
	delete(m.cache, slug)
	return nil
}

// SetRoles substitui o conjunto inteiro de papéis pelos identificadores informados.
// Identificadores repetidos ou não positivos são ignorados.
func (m *Membership) SetRoles(ctx context.Context, ids []int64) error {
	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id > 0 {
			wanted[id] = struct{}{}
		}
	}

	present := make(map[int64]struct{}, len(m.assignments))
	for _, a := range m.assignments {
		present[a.Role.ID] = struct{}{}
	}

	// resolve tudo antes de mexer no estado
	var added []repo.Role
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := wanted[id]; !ok {
			continue
		}
		if _, ok := present[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		role, err := m.catalog.RoleByID(ctx, id)
		if err != nil {
			return err
		}
		added = append(added, role)
	}

	m.drop(func(a *Assignment) bool {
		_, keep := wanted[a.Role.ID]
		return !keep
	})
	for _, a := range m.assignments {
		if _, keep := wanted[a.Role.ID]; keep {
			a.removed = false
		}
	}
	for _, role := range added {
		m.assignments = append(m.assignments, &Assignment{Role: role})
	}

	m.Invalidate()
	return nil
}

// drop remove vínculos novos e marca os persistidos que satisfazem match.
func (m *Membership) drop(match func(*Assignment) bool) {
	kept := m.assignments[:0]
	for _, a := range m.assignments {
		if match(a) {
			if a.IsNew() {
				continue
			}
			a.removed = true
		}
		kept = append(kept, a)
	}
	m.assignments = kept
}

// Changes devolve os vínculos novos ou marcados para remoção.
func (m *Membership) Changes() []Assignment {
	var changes []Assignment
	for _, a := range m.assignments {
		if a.IsNew() || a.removed {
			changes = append(changes, *a)
		}
	}
	return changes
}

// Roles devolve os papéis efetivos, excluindo os marcados para remoção.
func (m *Membership) Roles() []repo.Role {
	roles := make([]repo.Role, 0, len(m.assignments))
	for _, a := range m.assignments {
		if !a.removed {
			roles = append(roles, a.Role)
		}
	}
	return roles
}

// Slugs devolve os slugs dos papéis efetivos.
func (m *Membership) Slugs() []string {
	roles := m.Roles()
	slugs := make([]string, 0, len(roles))
	for _, r := range roles {
		slugs = append(slugs, r.Slug)
	}
	return slugs
}
