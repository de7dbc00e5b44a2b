package auth

import (
	"testing"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	tests := []struct {
		role string
		want domain.Privilege
	}{
		{role: "waiter", want: domain.PrivilegeStaff},
		{role: "cook", want: domain.PrivilegeKitchen},
		{role: "manager", want: domain.PrivilegeManager},
		{role: "owner", want: domain.PrivilegeAdmin},
	}

	v := NewVerifier("secret")
	for _, testCase := range tests {
		t.Run(testCase.role, func(t *testing.T) {
			token, err := v.Issue("tenant-a", "staff-9", testCase.role, time.Hour)
			require.NoError(t, err)

			actor, err := v.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, domain.Actor{TenantID: "tenant-a", StaffID: "staff-9", Privilege: testCase.want}, actor)
		})
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("secret")
	sign := func(claims Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func(tenantID, subject, role string) Claims {
		return Claims{
			TenantID: tenantID,
			Role:     role,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   subject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}
	expired := valid("tenant-a", "staff-1", "waiter")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong key", token: sign(valid("tenant-a", "staff-1", "waiter"), jwt.SigningMethodHS256, []byte("other"))},
		{name: "expired", token: sign(expired, jwt.SigningMethodHS256, []byte("secret"))},
		{name: "no tenant", token: sign(valid("", "staff-1", "waiter"), jwt.SigningMethodHS256, []byte("secret"))},
		{name: "no subject", token: sign(valid("tenant-a", "", "waiter"), jwt.SigningMethodHS256, []byte("secret"))},
		{name: "unknown role", token: sign(valid("tenant-a", "staff-1", "sommelier"), jwt.SigningMethodHS256, []byte("secret"))},
		{name: "none algorithm", token: sign(valid("tenant-a", "staff-1", "admin"), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := v.Verify(testCase.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
