package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

func TestCreateUserHashesPassword(t *testing.T) {
	svc := NewService(NewRepository(), nil)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, UserInput{Email: "ana@bodega.test", Name: "Ana", Password: "s3cret-pass", IsActive: true}, "system")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, RoleStaff, user.Role, "role defaults to staff")
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := NewService(NewRepository(), nil)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, UserInput{Email: "ana@bodega.test", Password: "s3cret-pass"}, "system")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, UserInput{Email: "Ana@Bodega.test", Password: "other-pass"}, "system")
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateUserKeepsHashWhenPasswordEmpty(t *testing.T) {
	svc := NewService(NewRepository(), nil)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, UserInput{Email: "ana@bodega.test", Password: "s3cret-pass", IsActive: true}, "system")
	require.NoError(t, err)
	originalHash := user.PasswordHash

	user, err = svc.UpdateUser(ctx, user.ID, UserInput{Email: "ana@bodega.test", Name: "Ana M.", Role: RoleAdmin, IsActive: true}, "system")
	require.NoError(t, err)
	require.Equal(t, "Ana M.", user.Name)
	require.Equal(t, RoleAdmin, user.Role)
	require.Equal(t, originalHash, user.PasswordHash)

	user, err = svc.UpdateUser(ctx, user.ID, UserInput{Email: "ana@bodega.test", Role: RoleAdmin, IsActive: true, Password: "new-pass-123"}, "system")
	require.NoError(t, err)
	require.NotEqual(t, originalHash, user.PasswordHash)
}

func TestDeleteUserFreesEmail(t *testing.T) {
	svc := NewService(NewRepository(), nil)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, UserInput{Email: "ana@bodega.test", Password: "s3cret-pass"}, "system")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID, "system"))
	_, err = svc.GetUser(ctx, user.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.CreateUser(ctx, UserInput{Email: "ana@bodega.test", Password: "s3cret-pass"}, "system")
	require.NoError(t, err)
}

func TestListUsersSortedByEmail(t *testing.T) {
	svc := NewService(NewRepository(), nil)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, UserInput{Email: "zoe@bodega.test", Password: "s3cret-pass"}, "system")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, UserInput{Email: "ana@bodega.test", Password: "s3cret-pass"}, "system")
	require.NoError(t, err)

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "ana@bodega.test", list[0].Email)
}
