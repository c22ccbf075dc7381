package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/candidate-dashboard/adapters/memory"
	"github.com/khoahotran/candidate-dashboard/internal/domain/operator"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/auth"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

func newLogin(t *testing.T) (*LoginUseCase, *auth.JWTService) {
	t.Helper()
	store := memory.New()
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	require.NoError(t, store.Operators().Upsert(context.Background(), &operator.Operator{
		ID:           uuid.New(),
		Email:        "ops@example.com",
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}))
	jwtSvc := auth.NewJWTService("secret", time.Hour)
	return NewLoginUseCase(store.Operators(), jwtSvc, logger.NewNop()), jwtSvc
}

func TestLogin_Success(t *testing.T) {
	uc, jwtSvc := newLogin(t)

	out, err := uc.Execute(context.Background(), LoginInput{Email: " OPS@example.com ", Password: "correct horse"})
	require.NoError(t, err)

	claims, err := jwtSvc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	uc, _ := newLogin(t)

	_, err := uc.Execute(context.Background(), LoginInput{Email: "ops@example.com", Password: "nope"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogin_UnknownOperator(t *testing.T) {
	uc, _ := newLogin(t)

	_, err := uc.Execute(context.Background(), LoginInput{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.False(t, apperror.IsNotFound(err))
}
