package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/rosvybory/observadores/internal/account"
	"github.com/rosvybory/observadores/internal/auth"
	"github.com/rosvybory/observadores/internal/repo"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrNoEligibleRoles indica ausência de papéis autorizados.
	ErrNoEligibleRoles = errors.New("usuário sem papel elegível")
	// ErrTooManyAttempts indica telefone bloqueado por excesso de tentativas.
	ErrTooManyAttempts = errors.New("muitas tentativas de login, tente mais tarde")
)

const (
	maxFailedLogins = 5
	lockoutWindow   = 15 * time.Minute
)

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type accountLoader interface {
	LoadByPhone(ctx context.Context, phone string) (*account.User, error)
}

// AuthService autentica usuários por telefone e senha.
type AuthService struct {
	users accountLoader
	redis redisCommander
	jwt   *auth.JWTManager
}

// NewAuthService cria novo serviço.
func NewAuthService(users accountLoader, redisClient redisCommander, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{users: users, redis: redisClient, jwt: jwtMgr}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Roles       []string  `json:"roles"`
}

// Login autentica pelo telefone (qualquer formato aceito por NormalizePhone) e senha.
func (s *AuthService) Login(ctx context.Context, rawPhone, password string) (*LoginResult, error) {
	phone, err := auth.NormalizePhone(rawPhone)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	key := failedLoginKey(phone)
	if n, err := s.redis.Get(ctx, key).Int(); err == nil && n >= maxFailedLogins {
		return nil, ErrTooManyAttempts
	} else if err != nil && !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("login: contador de tentativas indisponível")
	}

	user, err := s.users.LoadByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			s.registerFailure(ctx, key)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		s.registerFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}
	ok, err := auth.Verify(password, user.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Int64("user_id", user.ID).Msg("login: senha inválida")
		s.registerFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	if !user.MayLogin() {
		return nil, ErrNoEligibleRoles
	}
	_ = s.redis.Del(ctx, key).Err()

	slugs := user.Roles.Slugs()
	token, expires, err := s.jwt.GenerateAccessToken(user.ID, slugs)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   expires,
		UserID:      user.ID,
		Name:        user.FullName(),
		Roles:       slugs,
	}, nil
}

func (s *AuthService) registerFailure(ctx context.Context, key string) {
	n, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Msg("login: falha ao registrar tentativa")
		return
	}
	if n == 1 {
		_ = s.redis.Expire(ctx, key, lockoutWindow).Err()
	}
}

func failedLoginKey(phone string) string {
	return fmt.Sprintf("login:failed:%s", phone)
}
