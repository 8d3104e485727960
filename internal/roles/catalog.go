package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/rosvybory/observadores/internal/repo"
)

// Repository é a fonte persistente do catálogo.
type Repository interface {
	GetRoleBySlug(ctx context.Context, slug string) (repo.Role, error)
	GetRoleByID(ctx context.Context, id int64) (repo.Role, error)
	GetCurrentRoleByID(ctx context.Context, id int64) (repo.CurrentRole, error)
}

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Catalog resolve papéis e funções de nomeação com cache em memória e, opcionalmente, no Redis.
// Papéis são dados de referência; o cache é compartilhado entre requisições.
type Catalog struct {
	repo     Repository
	redis    redisCommander
	cache    sync.Map
	cacheTTL time.Duration
}

type cachedEntry struct {
	value    any
	expireAt time.Time
}

// NewCatalog cria catálogo; redisClient pode ser nil.
func NewCatalog(r Repository, redisClient redisCommander, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Catalog{repo: r, redis: redisClient, cacheTTL: ttl}
}

// RoleBySlug resolve papel pelo slug.
func (c *Catalog) RoleBySlug(ctx context.Context, slug string) (repo.Role, error) {
	return lookup(ctx, c, "roles:slug:"+slug, func() (repo.Role, error) {
		return c.repo.GetRoleBySlug(ctx, slug)
	}, slug)
}

// RoleByID resolve papel pelo identificador.
func (c *Catalog) RoleByID(ctx context.Context, id int64) (repo.Role, error) {
	return lookup(ctx, c, fmt.Sprintf("roles:id:%d", id), func() (repo.Role, error) {
		return c.repo.GetRoleByID(ctx, id)
	}, id)
}

// CurrentRoleByID resolve função de nomeação pelo identificador.
func (c *Catalog) CurrentRoleByID(ctx context.Context, id int64) (repo.CurrentRole, error) {
	return lookup(ctx, c, fmt.Sprintf("current_roles:id:%d", id), func() (repo.CurrentRole, error) {
		return c.repo.GetCurrentRoleByID(ctx, id)
	}, id)
}

func lookup[T any](ctx context.Context, c *Catalog, key string, load func() (T, error), ref any) (T, error) {
	var zero T

	if v, ok := c.cache.Load(key); ok {
		entry := v.(cachedEntry)
		if time.Now().Before(entry.expireAt) {
			return entry.value.(T), nil
		}
		c.cache.Delete(key)
	}

	if c.redis != nil {
		raw, err := c.redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var value T
			if jsonErr := json.Unmarshal(raw, &value); jsonErr == nil {
				c.store(key, value)
				return value, nil
			}
		case !errors.Is(err, redis.Nil):
			log.Warn().Err(err).Str("key", key).Msg("catálogo: falha ao ler cache redis")
		}
	}

	value, err := load()
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return zero, notFound(ref)
		}
		return zero, err
	}

	c.store(key, value)
	if c.redis != nil {
		if payload, err := json.Marshal(value); err == nil {
			if err := c.redis.Set(ctx, key, payload, c.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("catálogo: falha ao gravar cache redis")
			}
		}
	}
	return value, nil
}

func (c *Catalog) store(key string, value any) {
	c.cache.Store(key, cachedEntry{value: value, expireAt: time.Now().Add(c.cacheTTL)})
}
