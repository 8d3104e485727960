package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosvybory/observadores/internal/repo"
)

func TestScopeFor(t *testing.T) {
	actors := stubActorRepo{roles: map[int64][]repo.UserRole{
		1: {{Role: roleObserver}, {Role: roleAdmin}},
		2: {{Role: roleCentral}},
		3: {{Role: roleTC}, {Role: roleMC}},
		4: {{Role: roleObserver}},
	}}
	svc := NewRBACService(actors, stubCatalog{})
	ctx := context.Background()

	scope, err := svc.ScopeFor(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, scope, "admin não tem restrição")

	scope, err = svc.ScopeFor(ctx, 2)
	require.NoError(t, err)
	assert.True(t, scope.Allows(roleMC.ID))
	assert.True(t, scope.Allows(roleObserver.ID))
	assert.False(t, scope.Allows(roleCentral.ID))
	assert.False(t, scope.Allows(roleAdmin.ID))

	scope, err = svc.ScopeFor(ctx, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []repo.Role{roleTC, roleMobile, roleObserver}, scope.Roles())

	_, err = svc.ScopeFor(ctx, 4)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ScopeFor(ctx, 5)
	assert.ErrorIs(t, err, ErrForbidden)
}
