package roles

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosvybory/observadores/internal/repo"
)

type stubCatalogRepo struct {
	roles        map[string]repo.Role
	currentRoles map[int64]repo.CurrentRole
	calls        int
}

func (s *stubCatalogRepo) GetRoleBySlug(ctx context.Context, slug string) (repo.Role, error) {
	s.calls++
	if r, ok := s.roles[slug]; ok {
		return r, nil
	}
	return repo.Role{}, repo.ErrNotFound
}

func (s *stubCatalogRepo) GetRoleByID(ctx context.Context, id int64) (repo.Role, error) {
	s.calls++
	for _, r := range s.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return repo.Role{}, repo.ErrNotFound
}

func (s *stubCatalogRepo) GetCurrentRoleByID(ctx context.Context, id int64) (repo.CurrentRole, error) {
	s.calls++
	if cr, ok := s.currentRoles[id]; ok {
		return cr, nil
	}
	return repo.CurrentRole{}, repo.ErrNotFound
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if v, ok := s.store[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	switch v := value.(type) {
	case []byte:
		s.store[key] = string(v)
	case string:
		s.store[key] = v
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func TestCatalogCachesInMemory(t *testing.T) {
	r := &stubCatalogRepo{roles: map[string]repo.Role{Observer: roleObserver}}
	c := NewCatalog(r, nil, time.Minute)

	for i := 0; i < 3; i++ {
		role, err := c.RoleBySlug(context.Background(), Observer)
		require.NoError(t, err)
		assert.Equal(t, roleObserver, role)
	}
	assert.Equal(t, 1, r.calls)
}

func TestCatalogNotFound(t *testing.T) {
	c := NewCatalog(&stubCatalogRepo{}, nil, time.Minute)

	_, err := c.RoleBySlug(context.Background(), "wizard")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	_, err = c.CurrentRoleByID(context.Background(), 77)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestCatalogReadsThroughRedis(t *testing.T) {
	ctx := context.Background()
	rdb := &stubRedis{}
	cr := repo.CurrentRole{ID: 3, Slug: "psg", Name: "Membro UIK", MustHaveUic: true}

	first := NewCatalog(&stubCatalogRepo{currentRoles: map[int64]repo.CurrentRole{3: cr}}, rdb, time.Minute)
	got, err := first.CurrentRoleByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, cr, got)

	var cached repo.CurrentRole
	require.NoError(t, json.Unmarshal([]byte(rdb.store["current_roles:id:3"]), &cached))
	assert.Equal(t, cr, cached)

	// outra instância sem acesso ao banco resolve pelo redis
	emptyRepo := &stubCatalogRepo{}
	second := NewCatalog(emptyRepo, rdb, time.Minute)
	got, err = second.CurrentRoleByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, cr, got)
	assert.Zero(t, emptyRepo.calls)
}
