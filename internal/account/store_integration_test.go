//go:build integration

package account_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/rosvybory/observadores/internal/account"
	"github.com/rosvybory/observadores/internal/auth"
	"github.com/rosvybory/observadores/internal/db"
	"github.com/rosvybory/observadores/internal/merge"
	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("observadores"),
		postgres.WithUsername("observadores"),
		postgres.WithPassword("observadores"),
		postgres.WithInitScripts(filepath.Join("..", "..", "db", "migrations", "0001_init.sql")),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	appID      int64
	uicID      int64
	psgID      int64
	observerCR int64
}

func seed(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture

	var admID, munID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO regions (name, kind, has_tic) VALUES ('Centro', 2, false) RETURNING id`).Scan(&admID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO regions (name, kind, parent_id, has_tic) VALUES ('Arbat', 3, $1, true) RETURNING id`, admID).Scan(&munID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO uics (kind, number, name, region_id, adm_region_id) VALUES (1, 1501, 'UIK 1501', $1, $2) RETURNING id`,
		munID, admID).Scan(&f.uicID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO current_roles (slug, name, position, must_have_uic) VALUES ('psg', 'Membro UIK', 1, true) RETURNING id`).Scan(&f.psgID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO current_roles (slug, name, position) VALUES ('observer', 'Observador', 2) RETURNING id`).Scan(&f.observerCR))

	require.NoError(t, pool.QueryRow(ctx, `
		INSERT INTO user_apps (last_name, first_name, patronymic, year_born, email, phone,
			region_id, adm_region_id, can_be_observer, uic)
		VALUES ('Ivanova', 'Olga', 'Petrovna', 1975, 'olga@example.org', '+7 (916) 123-45-67', $1, $2, true, '1501')
		RETURNING id`, munID, admID).Scan(&f.appID))
	_, err := pool.Exec(ctx, `
		INSERT INTO user_app_current_roles (user_app_id, current_role_id, value)
		VALUES ($1, $2, '1501'), ($1, $3, '')`, f.appID, f.psgID, f.observerCR)
	require.NoError(t, err)
	return f
}

func TestStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("integração")
	}
	pool := startPostgres(t)
	f := seed(t, pool)
	ctx := context.Background()

	queries := repo.New(pool)
	catalog := roles.NewCatalog(queries, nil, time.Minute)
	store := account.NewStore(pool, catalog)
	merger := merge.New(catalog, queries, queries, auth.Credentials{}, zerolog.Nop())

	app, err := queries.GetApplication(ctx, f.appID)
	require.NoError(t, err)

	u, err := merger.Merge(ctx, store.New(), []repo.Application{app}, true)
	require.NoError(t, err)
	result, err := store.Save(ctx, u, account.SaveOptions{})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.True(t, result.ApplicationApproved)
	assert.Empty(t, u.Roles.Changes())

	loaded, err := store.Load(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "9161234567", loaded.Phone)
	assert.Equal(t, []string{roles.Observer}, loaded.Roles.Slugs())
	require.Len(t, loaded.CurrentRoles, 2)
	assert.Equal(t, f.psgID, loaded.CurrentRoles[0].CurrentRoleID)
	require.NotNil(t, loaded.CurrentRoles[0].UicID)
	assert.Equal(t, f.uicID, *loaded.CurrentRoles[0].UicID)

	ok, err := auth.Verify(u.Password, loaded.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	approvedApp, err := queries.GetApplication(ctx, f.appID)
	require.NoError(t, err)
	assert.True(t, approvedApp.Approved())

	// repetir o merge não duplica nada nem reaprova
	again, err := merger.Merge(ctx, loaded, []repo.Application{approvedApp}, true)
	require.NoError(t, err)
	result, err = store.Save(ctx, again, account.SaveOptions{})
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.False(t, result.ApplicationApproved)

	reloaded, err := store.Load(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.CurrentRoles, 2)
	assert.Equal(t, []string{roles.Observer}, reloaded.Roles.Slugs())
}

func TestStoreScopeRejectsWithoutWriting(t *testing.T) {
	if testing.Short() {
		t.Skip("integração")
	}
	pool := startPostgres(t)
	f := seed(t, pool)
	ctx := context.Background()

	queries := repo.New(pool)
	catalog := roles.NewCatalog(queries, nil, time.Minute)
	store := account.NewStore(pool, catalog)
	merger := merge.New(catalog, queries, queries, auth.Credentials{}, zerolog.Nop())

	app, err := queries.GetApplication(ctx, f.appID)
	require.NoError(t, err)
	u, err := merger.Merge(ctx, store.New(), []repo.Application{app}, false)
	require.NoError(t, err)
	_, err = store.Save(ctx, u, account.SaveOptions{})
	require.NoError(t, err)

	admin, err := catalog.RoleBySlug(ctx, roles.Admin)
	require.NoError(t, err)
	observer, err := catalog.RoleBySlug(ctx, roles.Observer)
	require.NoError(t, err)

	loaded, err := store.Load(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Roles.SetRoles(ctx, []int64{admin.ID}))
	loaded.LastName = "Petrova"

	_, err = store.Save(ctx, loaded, account.SaveOptions{Scope: roles.NewScope(observer)})
	var forbidden *roles.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, []string{"Administrador"}, forbidden.Roles)

	fresh, err := store.Load(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivanova", fresh.LastName)
	assert.Equal(t, []string{roles.Observer}, fresh.Roles.Slugs())

	_, err = store.Save(ctx, loaded, account.SaveOptions{})
	require.NoError(t, err)
	fresh, err = store.Load(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{roles.Admin}, fresh.Roles.Slugs())
	assert.True(t, fresh.MayLogin())
}

func TestStorePhoneTaken(t *testing.T) {
	if testing.Short() {
		t.Skip("integração")
	}
	pool := startPostgres(t)
	_ = seed(t, pool)
	ctx := context.Background()

	queries := repo.New(pool)
	store := account.NewStore(pool, roles.NewCatalog(queries, nil, time.Minute))

	first := store.New()
	first.LastName, first.Phone = "Ivanova", "9161234567"
	_, err := store.Save(ctx, first, account.SaveOptions{})
	require.NoError(t, err)

	second := store.New()
	second.LastName, second.Phone = "Petrova", "9161234567"
	_, err = store.Save(ctx, second, account.SaveOptions{})
	assert.ErrorIs(t, err, repo.ErrPhoneTaken)
	assert.True(t, second.IsNew())
}
