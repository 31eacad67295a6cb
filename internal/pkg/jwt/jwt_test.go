package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTripsActor(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "1h")
	actor := user.Actor{UserID: "u-1", CompanyID: "c-1", EmployeeID: "e-1", Role: user.RoleManager}

	tokenString, expiresAt, err := svc.GenerateAccessToken(actor)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, int64(0))

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), token, nil)
	got, err := ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestGenerateAccessToken_InvalidExpiration(t *testing.T) {
	svc := NewJWTService("secret", "soon")

	_, _, err := svc.GenerateAccessToken(user.Actor{UserID: "u-1", CompanyID: "c-1"})

	assert.Error(t, err)
}

func TestActorFromContext_Missing(t *testing.T) {
	_, err := ActorFromContext(context.Background())

	assert.ErrorIs(t, err, user.ErrActorMissing)
}

func TestActorFromContext_MissingCompany(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "1h")
	tokenString, _, err := svc.GenerateAccessToken(user.Actor{UserID: "u-1", Role: user.RoleOwner})
	require.NoError(t, err)
	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	_, err = ActorFromContext(jwtauth.NewContext(context.Background(), token, nil))

	assert.ErrorIs(t, err, user.ErrCompanyIDRequired)
}

func TestContextWithActor(t *testing.T) {
	actor := user.Actor{UserID: "system", CompanyID: "c-1", Role: user.RoleSystem}

	got, err := ActorFromContext(ContextWithActor(context.Background(), actor))

	require.NoError(t, err)
	assert.Equal(t, actor, got)
}
