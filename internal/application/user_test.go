package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"skin-vision-bot/internal/domain/entity"
	"skin-vision-bot/internal/infrastructure/storage"
)

func TestUserService_BeginAnalysisAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository(40)
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginAnalysis(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetThreshold(t *testing.T) {
	repo := storage.NewMemoryUserRepository(40)
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetThreshold(ctx, 2, 20, 75)
	require.NoError(t, err)
	require.Equal(t, 75, user.ThresholdPercent)

	user, err = svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, 75, user.ThresholdPercent)
}
