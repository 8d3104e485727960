package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rosvybory/observadores/internal/account"
	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
)

var (
	roleAdmin    = repo.Role{ID: 1, Slug: roles.Admin, Name: "Administrador"}
	roleCentral  = repo.Role{ID: 3, Slug: roles.Central, Name: "Coordenador central"}
	roleMC       = repo.Role{ID: 4, Slug: roles.Municipal, Name: "Coordenador municipal"}
	roleTC       = repo.Role{ID: 5, Slug: roles.Territorial, Name: "Coordenador territorial"}
	roleMobile   = repo.Role{ID: 6, Slug: roles.Mobile, Name: "Grupo móvel"}
	roleObserver = repo.Role{ID: 7, Slug: roles.Observer, Name: "Observador"}
)

type stubCatalog struct{}

func (stubCatalog) all() []repo.Role {
	return []repo.Role{roleAdmin, roleCentral, roleMC, roleTC, roleMobile, roleObserver}
}

func (c stubCatalog) RoleBySlug(ctx context.Context, slug string) (repo.Role, error) {
	for _, r := range c.all() {
		if r.Slug == slug {
			return r, nil
		}
	}
	return repo.Role{}, fmt.Errorf("%w: %s", roles.ErrRoleNotFound, slug)
}

func (c stubCatalog) RoleByID(ctx context.Context, id int64) (repo.Role, error) {
	for _, r := range c.all() {
		if r.ID == id {
			return r, nil
		}
	}
	return repo.Role{}, fmt.Errorf("%w: %d", roles.ErrRoleNotFound, id)
}

type stubApplications struct {
	apps  map[int64]repo.Application
	delay map[int64]time.Duration
}

func (s stubApplications) GetApplication(ctx context.Context, id int64) (repo.Application, error) {
	if d := s.delay[id]; d > 0 {
		time.Sleep(d)
	}
	app, ok := s.apps[id]
	if !ok {
		return repo.Application{}, repo.ErrNotFound
	}
	return app, nil
}

// stubStore guarda usuários em memória e aplica o escopo como o store real.
type stubStore struct {
	mu     sync.Mutex
	users  map[int64]*account.User
	nextID int64
	saves  []account.SaveOptions
}

func newStubStore(users ...*account.User) *stubStore {
	s := &stubStore{users: make(map[int64]*account.User), nextID: 100}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubStore) New() *account.User {
	return account.New(stubCatalog{})
}

func (s *stubStore) Load(ctx context.Context, id int64) (*account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (s *stubStore) LoadByPhone(ctx context.Context, phone string) (*account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *stubStore) Save(ctx context.Context, u *account.User, opts account.SaveOptions) (account.SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, opts)

	if err := opts.Scope.Check(u.Roles.Changes()); err != nil {
		return account.SaveResult{}, err
	}
	if !opts.SkipValidation {
		if err := u.Validate(); err != nil {
			return account.SaveResult{}, err
		}
	}

	result := account.SaveResult{Created: u.IsNew()}
	if result.Created {
		s.nextID++
		u.ID = s.nextID
		if u.Application != nil && !u.Application.Approved() {
			u.Application.State = repo.ApplicationStateApproved
			result.ApplicationApproved = true
		}
	}
	if u.Password != "" {
		u.PasswordHash = "hash:" + u.Password
	}

	var persisted []repo.UserRole
	for i, r := range u.Roles.Roles() {
		persisted = append(persisted, repo.UserRole{ID: int64(i + 1), UserID: u.ID, Role: r})
	}
	u.Roles.Reload(persisted)
	s.users[u.ID] = u
	return result, nil
}

type stubMerger struct {
	mu       sync.Mutex
	received [][]int64
	apply    func(u *account.User, apps []repo.Application)
}

func (m *stubMerger) Merge(ctx context.Context, u *account.User, apps []repo.Application, updateCurrentRoles bool) (*account.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	m.received = append(m.received, ids)
	if m.apply != nil {
		m.apply(u, apps)
	}
	return u, nil
}

type sentPassword struct {
	phone    string
	password string
}

type stubNotifier struct {
	sent []sentPassword
	err  error
}

func (n *stubNotifier) SendPassword(ctx context.Context, phone, password string) error {
	n.sent = append(n.sent, sentPassword{phone: phone, password: password})
	return n.err
}

type stubActorRepo struct {
	roles map[int64][]repo.UserRole
}

func (s stubActorRepo) ListUserRoles(ctx context.Context, userID int64) ([]repo.UserRole, error) {
	return s.roles[userID], nil
}

type stubRedis struct {
	mu    sync.Mutex
	store map[string]int64
	ttl   map[string]time.Duration
}

func newStubRedis() *stubRedis {
	return &stubRedis{store: make(map[string]int64), ttl: make(map[string]time.Duration)}
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	if v, ok := s.store[key]; ok {
		cmd.SetVal(fmt.Sprint(v))
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (s *stubRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(s.store[key])
	return cmd
}

func (s *stubRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl[key] = expiration
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.store, k)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func existingUser(id int64, phone string, userRoles ...repo.Role) *account.User {
	persisted := make([]repo.UserRole, 0, len(userRoles))
	for i, r := range userRoles {
		persisted = append(persisted, repo.UserRole{ID: id*10 + int64(i), UserID: id, Role: r})
	}
	return &account.User{
		User:  repo.User{ID: id, LastName: "Sidorov", FirstName: "Ivan", Phone: phone},
		Roles: roles.NewMembership(stubCatalog{}, persisted),
	}
}
