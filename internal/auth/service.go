package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ougajs-sys/easyflows-backend/internal/users"
	pkgauth "github.com/ougajs-sys/easyflows-backend/pkg/auth"
	"github.com/ougajs-sys/easyflows-backend/pkg/config"
	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	pkgerrors "github.com/ougajs-sys/easyflows-backend/pkg/errors"
	"github.com/ougajs-sys/easyflows-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// RateLimiter counts login attempts per key within a window. Implemented by
// the redis-backed limiter; nil-safe via the noop limiter.
type RateLimiter interface {
	Allow(ctx context.Context, scope, key string, limit int, window time.Duration) (bool, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo    userRepository
	RateLimiter RateLimiter
	JWTConfig   config.JWTConfig
	RateConfig  config.AuthRateLimitConfig
	Now         func() time.Time
}

// Service authenticates operators and issues access tokens.
type Service struct {
	users   userRepository
	limiter RateLimiter
	jwtCfg  config.JWTConfig
	rateCfg config.AuthRateLimitConfig
	now     func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("auth.NewService: nil user repository")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Service{
		users:   params.UserRepo,
		limiter: params.RateLimiter,
		jwtCfg:  params.JWTConfig,
		rateCfg: params.RateConfig,
		now:     params.Now,
	}, nil
}

// Login checks the credentials and returns a signed access token. Failures
// are indistinguishable to the caller: wrong email, wrong password and
// deactivated accounts all yield the same unauthorized error.
func (s *Service) Login(ctx context.Context, req LoginRequest, clientIP string) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if err := s.checkRateLimits(ctx, email, clientIP); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.Active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.FullName,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: token,
		User:        users.FromModel(user),
	}, nil
}

func (s *Service) checkRateLimits(ctx context.Context, email, clientIP string) error {
	if s.limiter == nil {
		return nil
	}
	window := s.rateCfg.LoginWindow
	if window <= 0 {
		window = time.Minute
	}
	if limit := s.rateCfg.LoginEmailLimit; limit > 0 {
		allowed, err := s.limiter.Allow(ctx, "login:email", email, limit, window)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check")
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}
	if limit := s.rateCfg.LoginIPLimit; limit > 0 && clientIP != "" {
		allowed, err := s.limiter.Allow(ctx, "login:ip", clientIP, limit, window)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check")
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}
	return nil
}
