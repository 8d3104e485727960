package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosvybory/observadores/internal/repo"
)

func intPtr(v int) *int { return &v }

func TestValidate(t *testing.T) {
	u := &User{User: repo.User{Phone: "9161234567"}}
	require.NoError(t, u.Validate())

	u.Phone = "+79161234567"
	assert.ErrorIs(t, u.Validate(), ErrInvalidPhone)

	u.Phone = "9161234567"
	u.YearBorn = intPtr(1899)
	assert.ErrorIs(t, u.Validate(), ErrInvalidYearBorn)

	u.YearBorn = intPtr(1975)
	u.Email = "sem-arroba"
	assert.ErrorIs(t, u.Validate(), ErrInvalidEmail)

	u.Email = "obs@example.org"
	assert.NoError(t, u.Validate())
}

func TestFindOrInitCurrentRoleDoesNotDuplicate(t *testing.T) {
	u := &User{User: repo.User{ID: 3}}
	cr := repo.CurrentRole{ID: 9, Slug: "psg"}

	first := u.FindOrInitCurrentRole(cr)
	second := u.FindOrInitCurrentRole(cr)

	assert.Same(t, first, second)
	assert.Len(t, u.CurrentRoles, 1)
	assert.True(t, u.HasCurrentRole(9))
	assert.Len(t, u.PendingCurrentRoles(), 1)
	assert.Equal(t, int64(3), first.UserID)
}

func TestSetUic(t *testing.T) {
	a := &CurrentRoleAssignment{}
	a.SetUic(&repo.Uic{ID: 12})
	require.NotNil(t, a.UicID)
	assert.Equal(t, int64(12), *a.UicID)

	a.SetUic(nil)
	assert.Nil(t, a.UicID)
	assert.Nil(t, a.Uic)
}

func TestFullName(t *testing.T) {
	u := &User{User: repo.User{LastName: "Ivanov", FirstName: "Ivan", Patronymic: " "}}
	assert.Equal(t, "Ivanov Ivan", u.FullName())
}
