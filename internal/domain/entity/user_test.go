package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_DefaultState(t *testing.T) {
	u := NewUser(1, 10)
	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, int64(10), u.ChatID)
	require.Equal(t, DefaultThresholdPercent, u.ThresholdPercent)
}

func TestUser_SetThresholdClamps(t *testing.T) {
	u := NewUser(1, 10)
	u.SetThreshold(150)
	require.Equal(t, 100, u.ThresholdPercent)
	u.SetThreshold(-3)
	require.Equal(t, 0, u.ThresholdPercent)
	u.SetThreshold(55)
	require.Equal(t, 55, u.ThresholdPercent)
}
