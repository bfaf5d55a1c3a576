package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single error Verify returns. Callers only learn
// that the token cannot be trusted, never why.
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig configures a TokenService.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	Audience   string
	Expiration time.Duration
	Leeway     time.Duration
}

// Claims is the JWT payload issued at login and registration.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(id int64, email string, roles []Role) (string, error)
}

// TokenVerifier turns a token string into a Principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// TokenService issues and verifies HS256 JWTs.
type TokenService struct {
	cfg    TokenConfig
	parser *jwt.Parser
	now    func() time.Time
}

// NewTokenService validates cfg and builds the parser once.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: secret is required")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("token: issuer and audience are required")
	}
	if cfg.Expiration <= 0 {
		return nil, errors.New("token: expiration must be positive")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 30*time.Second {
		return nil, errors.New("token: leeway must be within [0s, 30s]")
	}

	s := &TokenService{cfg: cfg, now: time.Now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s, nil
}

// Issue signs a token for the given subject.
func (s *TokenService) Issue(id int64, email string, roles []Role) (string, error) {
	now := s.now()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	claims := Claims{
		Email: email,
		Roles: names,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(id, 10),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry, then maps the
// claims onto a Principal.
func (s *TokenService) Verify(token string) (*Principal, error) {
	claims := &Claims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidToken
	}
	if len(claims.Roles) == 0 {
		return nil, ErrInvalidToken
	}

	roles := make([]Role, 0, len(claims.Roles))
	for _, name := range claims.Roles {
		role, err := ParseRole(name)
		if err != nil {
			return nil, ErrInvalidToken
		}
		roles = append(roles, role)
	}

	return &Principal{ID: id, Email: claims.Email, Roles: roles}, nil
}
