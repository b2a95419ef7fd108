// Package identity resolves caller identity from bearer tokens.
//
// Tokens are HS256 JWTs whose subject is the opaque user id. The role is
// never read from the token; it is always resolved from the caller's
// profile.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/louisbranch/foodshare/internal/platform/config"
	apperrors "github.com/louisbranch/foodshare/internal/platform/errors"
	"github.com/louisbranch/foodshare/internal/services/shared/grpcauthctx"
	"google.golang.org/grpc/metadata"
)

// EnvPrefix scopes identity settings in the environment.
const EnvPrefix = "FOODSHARE_IDENTITY_"

const (
	AuthorizationHeader = grpcauthctx.AuthorizationHeader
	// DevUserIDHeader is honoured only when AllowDevHeader is set.
	DevUserIDHeader = grpcauthctx.UserIDHeader

	minSecretBytes = 32
	signingMethod  = "HS256"
)

// Config holds verifier and issuer settings.
type Config struct {
	Secret         string        `env:"SECRET"`
	Issuer         string        `env:"ISSUER" envDefault:"foodshare"`
	Audience       string        `env:"AUDIENCE" envDefault:"foodshare-donations"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	AllowDevHeader bool          `env:"ALLOW_DEV_HEADER" envDefault:"false"`
}

// LoadConfigFromEnv reads FOODSHARE_IDENTITY_* settings.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnvWithPrefix(&cfg, EnvPrefix); err != nil {
		return Config{}, err
	}
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	cfg.Audience = strings.TrimSpace(cfg.Audience)
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Secret == "" && !c.AllowDevHeader {
		return fmt.Errorf("%sSECRET is required unless %sALLOW_DEV_HEADER is true", EnvPrefix, EnvPrefix)
	}
	if c.Secret != "" && len(c.Secret) < minSecretBytes {
		return fmt.Errorf("%sSECRET must be at least %d bytes", EnvPrefix, minSecretBytes)
	}
	if c.Issuer == "" || c.Audience == "" {
		return fmt.Errorf("identity issuer and audience are required")
	}
	return nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Provider verifies incoming identities.
type Provider struct {
	cfg Config
	now func() time.Time
}

// NewProvider returns a provider for cfg. A nil now uses time.Now.
func NewProvider(cfg Config, now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{cfg: cfg, now: now}
}

// Verify validates token and returns its subject.
func (p *Provider) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperrors.New(apperrors.CodeIdentityMissing, "identity token is required")
	}
	if p.cfg.Secret == "" {
		return "", apperrors.New(apperrors.CodeIdentityInvalid, "identity tokens are not accepted")
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return []byte(p.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithIssuer(p.cfg.Issuer),
		jwt.WithAudience(p.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return "", mapJWTError(err)
	}
	subject := strings.TrimSpace(parsed.Subject)
	if subject == "" {
		return "", apperrors.New(apperrors.CodeIdentityInvalid, "identity token subject is required")
	}
	return subject, nil
}

// Authenticate resolves the caller from incoming metadata. It returns "" with
// no error for anonymous calls so unauthenticated RPCs such as health checks
// still pass.
func (p *Provider) Authenticate(_ context.Context, md metadata.MD) (string, error) {
	if values := md.Get(AuthorizationHeader); len(values) > 0 {
		raw := strings.TrimSpace(values[0])
		scheme, token, ok := strings.Cut(raw, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", apperrors.New(apperrors.CodeIdentityInvalid, "authorization must use the bearer scheme")
		}
		return p.Verify(token)
	}
	if p.cfg.AllowDevHeader {
		if values := md.Get(DevUserIDHeader); len(values) > 0 {
			return strings.TrimSpace(values[0]), nil
		}
	}
	return "", nil
}

// Issue signs a token for subject. It is used by development tooling.
func (p *Provider) Issue(subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if p.cfg.Secret == "" {
		return "", errors.New("identity secret is not configured")
	}
	now := p.now().UTC()
	ttl := p.cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    p.cfg.Issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{p.cfg.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}})
	signed, err := token.SignedString([]byte(p.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign identity token: %w", err)
	}
	return signed, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeIdentityInvalid, "identity token is expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.CodeIdentityInvalid, "identity token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return apperrors.Wrap(apperrors.CodeIdentityInvalid, "identity token was issued for another service", err)
	default:
		return apperrors.Wrap(apperrors.CodeIdentityInvalid, "identity token is invalid", err)
	}
}
