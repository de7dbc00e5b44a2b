package auth

import (
	"errors"
	"fmt"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity claim issued by the identity service. The subject
// is the staff member.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 identity tokens and turns them into actors.
type Verifier struct {
	Secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{Secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenStr string) (domain.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.Secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TenantID == "" || claims.Subject == "" {
		return domain.Actor{}, fmt.Errorf("%w: missing tenant or subject", ErrInvalidToken)
	}
	priv, ok := domain.ParsePrivilege(claims.Role)
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return domain.Actor{TenantID: claims.TenantID, StaffID: claims.Subject, Privilege: priv}, nil
}

// Issue signs a token for a staff member. Used by tooling and tests; the
// identity service issues production tokens.
func (v *Verifier) Issue(tenantID, staffID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
}
