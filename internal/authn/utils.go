package authn

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

var ErrInvalidJWT = errors.New("invalid jwt token")
var ErrInvalidClaims = errors.New("invalid claims")
var ErrTokenExpired = errors.New("token expired")

type Claims struct {
	jwt.StandardClaims
	Email string `json:"email"`
}

// UserID returns the numeric user id carried in the subject.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidClaims
	}
	return id, nil
}

// ParseClaims decodes a token without checking its signature. Opaque
// tokens that are not JWTs return ErrInvalidJWT.
func ParseClaims(token string) (Claims, error) {
	claims := Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return claims, ErrInvalidJWT
	}
	return claims, nil
}

// Expired reports whether token is a JWT whose exp claim is not after now.
// Tokens without exp, and tokens that are not JWTs, never expire.
func Expired(token string, now time.Time) bool {
	claims, err := ParseClaims(token)
	if err != nil {
		return false
	}
	return !claims.VerifyExpiresAt(now.Unix(), false)
}

// Signer issues and verifies HS256 access tokens.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(key string, ttl time.Duration) *Signer {
	return &Signer{key: []byte(key), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for the user.
func (s *Signer) Issue(userID int64, email string) (string, error) {
	now := s.now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
		Email: email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature and expiry of token and returns its claims.
func (s *Signer) Verify(token string) (Claims, error) {
	claims := Claims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return claims, ErrTokenExpired
		}
		return claims, ErrInvalidJWT
	}
	if _, err := claims.UserID(); err != nil {
		return claims, err
	}
	return claims, nil
}
