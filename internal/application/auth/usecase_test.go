package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Prebatch-api/internal/application/auth"
	"github.com/jhoicas/Prebatch-api/internal/application/dto"
	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/Prebatch-api/pkg/jwt"
)

func newAuth(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	uc := auth.NewAuthUseCase(memory.NewUserRepository(), auth.JWTConfig{Secret: "k", ExpMinutes: 5, Issuer: "test"})
	_, err := uc.RegisterUser(context.Background(), "op1", "clave-segura", "Operador Uno", "")
	require.NoError(t, err)
	return uc
}

func TestLogin_EmiteTokenConUsuario(t *testing.T) {
	uc := newAuth(t)

	resp, err := uc.Login(context.Background(), dto.LoginRequest{Username: "op1", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "op1", resp.User.Username)
	assert.Equal(t, "operador", resp.User.Role)

	claims, err := pkgjwt.Parse("k", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "op1", claims.Username)
}

func TestVerifyCredential(t *testing.T) {
	uc := newAuth(t)
	ctx := context.Background()

	assert.NoError(t, uc.VerifyCredential(ctx, "op1", "clave-segura"))
	assert.ErrorIs(t, uc.VerifyCredential(ctx, "op1", "otra"), domain.ErrUnauthorized)
	assert.ErrorIs(t, uc.VerifyCredential(ctx, "nadie", "clave-segura"), domain.ErrUserNotFound)
}

func TestRegisterUser_Duplicado(t *testing.T) {
	uc := newAuth(t)

	_, err := uc.RegisterUser(context.Background(), "op1", "clave-segura", "", "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
