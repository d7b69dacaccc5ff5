// internal/app/auth.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

var ErrUnauthorized = errors.New("unauthorized")

type Auth struct {
	enabled     bool
	redis       *redis.Client
	keyTemplate string
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false, tokenHeader: config.Auth.TokenHeader}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewAuthWithClient(client, config.Auth.TokenKeyTemplate, config.Auth.TokenHeader), nil
}

// NewAuthWithClient enables token checks against an already connected redis client.
func NewAuthWithClient(client *redis.Client, keyTemplate, tokenHeader string) *Auth {
	return &Auth{
		enabled:     true,
		redis:       client,
		keyTemplate: keyTemplate,
		tokenHeader: tokenHeader,
	}
}

func (a *Auth) Enabled() bool {
	return a.enabled
}

func (a *Auth) Client() *redis.Client {
	return a.redis
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// ValidateRequest checks the bearer token of r against the one stored for user.
func (a *Auth) ValidateRequest(r *http.Request, user string) error {
	if !a.enabled {
		return nil
	}

	authHeader := r.Header.Get(a.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("%w: invalid authorization header format", ErrUnauthorized)
	}

	return a.ValidateToken(r.Context(), user, strings.TrimPrefix(authHeader, "Bearer "))
}

func (a *Auth) ValidateToken(ctx context.Context, user, token string) error {
	if !a.enabled {
		return nil
	}

	key := strings.NewReplacer("{user}", user).Replace(a.keyTemplate)

	fields, err := a.redis.HGetAll(ctx, key).Result()
	if err == redis.Nil || (err == nil && len(fields) == 0) {
		logger.Debug.Printf("Token not found for key: %s", key)
		return fmt.Errorf("%w: token not found", ErrUnauthorized)
	}
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return fmt.Errorf("redis error: %w", err)
	}

	if fields["token"] != token {
		logger.Debug.Printf("Token mismatch for user %s and what's found in %s", user, key)
		return fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	return nil
}
