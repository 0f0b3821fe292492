//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeGray(t *testing.T, w, h int, shade func(x, y int) uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: shade(x, y)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func checker(x, y int) uint8 {
	if (x/20+y/20)%2 == 0 {
		return 60
	}
	return 190
}

func TestQualityGate_AcceptsSharpPhoto(t *testing.T) {
	require.True(t, Enabled)
	err := NewQualityGate().Check(context.Background(), encodeGray(t, 400, 400, checker))
	require.NoError(t, err)
}

func TestQualityGate_RejectsSmallPhoto(t *testing.T) {
	err := NewQualityGate().Check(context.Background(), encodeGray(t, 100, 100, checker))
	require.ErrorIs(t, err, ErrPoorQuality)
	require.ErrorContains(t, err, "too small")
}

func TestQualityGate_RejectsBlurryPhoto(t *testing.T) {
	flat := func(int, int) uint8 { return 128 }
	err := NewQualityGate().Check(context.Background(), encodeGray(t, 400, 400, flat))
	require.ErrorIs(t, err, ErrPoorQuality)
	require.ErrorContains(t, err, "blurry")
}

func TestQualityGate_RejectsOverexposedPhoto(t *testing.T) {
	bright := func(x, y int) uint8 {
		if x < 40 {
			return checker(x, y)
		}
		return 255
	}
	err := NewQualityGate().Check(context.Background(), encodeGray(t, 400, 400, bright))
	require.ErrorIs(t, err, ErrPoorQuality)
	require.ErrorContains(t, err, "overexposed")
}

func TestQualityGate_RejectsGarbage(t *testing.T) {
	err := NewQualityGate().Check(context.Background(), []byte("not an image"))
	require.ErrorIs(t, err, ErrPoorQuality)
}
