package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodega-ims/bodega-ims/internal/shared"
	"github.com/bodega-ims/bodega-ims/internal/users"
)

func setupUsers(t *testing.T) *users.Service {
	t.Helper()
	return users.NewService(users.NewRepository(), nil)
}

func TestAuthenticate(t *testing.T) {
	userSvc := setupUsers(t)
	ctx := context.Background()

	created, err := userSvc.CreateUser(ctx, users.UserInput{Email: "ana@bodega.test", Password: "s3cret-pass", IsActive: true}, "system")
	require.NoError(t, err)

	svc := NewService(userSvc)

	user, err := svc.Authenticate(ctx, "ana@bodega.test", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "ana@bodega.test", "wrong-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "ghost@bodega.test", "s3cret-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	userSvc := setupUsers(t)
	ctx := context.Background()

	_, err := userSvc.CreateUser(ctx, users.UserInput{Email: "ana@bodega.test", Password: "s3cret-pass", IsActive: false}, "system")
	require.NoError(t, err)

	svc := NewService(userSvc)
	_, err = svc.Authenticate(ctx, "ana@bodega.test", "s3cret-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
