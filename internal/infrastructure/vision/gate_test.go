package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewQualityGate_Defaults(t *testing.T) {
	g := NewQualityGate()
	require.Equal(t, 320, g.MinImageSide)
	require.Greater(t, g.MaxOverexposedRatio, 0.0)
	require.Less(t, g.MinSharpnessEdgeRatio, 0.01)
}
