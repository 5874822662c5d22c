package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/opsboard/report-api/internal/auth"
	"github.com/opsboard/report-api/internal/config"
	"github.com/opsboard/report-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

var testOrgID = uuid.MustParse("7b7c8c56-3d7e-4c89-9e2f-0f1f3c6e2a10")

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		Issuer:        "https://crm.opsboard.io",
		Audience:      "report-api",
		SigningSecret: testSecret,
		ApiKey:        "test-api-key-12345",
	}
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "c0a8012e-0000-4000-8000-000000000001",
		"name":   "Ana Souza",
		"email":  "ana@acme.io",
		"roles":  []string{"manager"},
		"org_id": testOrgID.String(),
		"iss":    "https://crm.opsboard.io",
		"aud":    "report-api",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	userCtx, err := validator.ValidateToken(signToken(t, validClaims(), testSecret))

	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("c0a8012e-0000-4000-8000-000000000001"), userCtx.UserID)
	assert.Equal(t, "Ana Souza", userCtx.DisplayName)
	assert.Equal(t, "ana@acme.io", userCtx.Email)
	assert.Equal(t, testOrgID, userCtx.OrganizationID)
	assert.Equal(t, []domain.UserRoleType{domain.RoleManager}, userCtx.Roles)
}

func TestJWTValidator_Rejects(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	tests := []struct {
		name    string
		mutate  func(jwt.MapClaims)
		secret  string
		wantErr error
	}{
		{
			name:    "wrong secret",
			mutate:  func(jwt.MapClaims) {},
			secret:  "other-secret",
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "expired",
			mutate:  func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() },
			secret:  testSecret,
			wantErr: auth.ErrExpiredToken,
		},
		{
			name:    "wrong issuer",
			mutate:  func(c jwt.MapClaims) { c["iss"] = "https://evil.example" },
			secret:  testSecret,
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "wrong audience",
			mutate:  func(c jwt.MapClaims) { c["aud"] = "another-api" },
			secret:  testSecret,
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "missing organization",
			mutate:  func(c jwt.MapClaims) { delete(c, "org_id") },
			secret:  testSecret,
			wantErr: auth.ErrMissingOrg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(claims)

			userCtx, err := validator.ValidateToken(signToken(t, claims, tt.secret))

			assert.Nil(t, userCtx)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTValidator_NoSecretConfigured(t *testing.T) {
	cfg := testAuthConfig()
	cfg.SigningSecret = ""
	validator := auth.NewJWTValidator(cfg)

	_, err := validator.ValidateToken(signToken(t, validClaims(), testSecret))

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExtractRoles(t *testing.T) {
	tests := []struct {
		name     string
		claims   jwt.MapClaims
		expected []domain.UserRoleType
	}{
		{"roles array", jwt.MapClaims{"roles": []interface{}{"org_admin", "sales"}}, []domain.UserRoleType{domain.RoleOrgAdmin, domain.RoleSales}},
		{"single role string", jwt.MapClaims{"role": "viewer"}, []domain.UserRoleType{domain.RoleViewer}},
		{"no roles", jwt.MapClaims{}, []domain.UserRoleType{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.ExtractRoles(tt.claims))
		})
	}
}
