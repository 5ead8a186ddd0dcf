package auth

import (
	"time"

	"farmchain/config"
	"farmchain/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTService builds the token service from the access secret and auth settings.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt access secret must be provided")
	}

	ttl := time.Duration(0)
	issuer := ""
	if cfg.Auth != nil {
		ttl = cfg.Auth.AccessTokenTTL
		issuer = cfg.Auth.Issuer
	}
	if ttl <= 0 {
		return nil, errors.New("auth.accessTokenTTL must be positive")
	}

	return newJWTService(cfg.SecretKey.Access, ttl, issuer, time.Now), nil
}

func newJWTService(secret string, ttl time.Duration, issuer string, now func() time.Time) *jwtService {
	return &jwtService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    now,
	}
}

// Issue signs a token whose subject is userID and whose expiry is now+ttl.
func (s *jwtService) Issue(userID uuid.UUID) (string, time.Time, error) {
	issuedAt := jwt.NewNumericDate(s.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(s.ttl))

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		Issuer:    s.issuer,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign access token")
	}

	return signed, expiresAt.Time, nil
}

// Validate checks signature, algorithm, issuer and expiry, then returns the subject.
func (s *jwtService) Validate(tokenString string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, errors.Wrap(service.ErrTokenExpired, err.Error())
		}

		return uuid.Nil, errors.Wrap(service.ErrTokenInvalid, err.Error())
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.Wrap(service.ErrTokenInvalid, "subject is not a user id")
	}

	return userID, nil
}
