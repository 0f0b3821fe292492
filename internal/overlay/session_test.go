package overlay

import (
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSession_CachesDecodedImage(t *testing.T) {
	var decodes atomic.Int32
	s := NewSession(NewRenderer(nil), WithDecoder(func(data []byte) (image.Image, error) {
		decodes.Add(1)
		return Decode(data)
	}))
	src := Source{ID: "a", Data: encodePNG(t, solidImage(200, 100))}

	_, err := s.Render(src, scenario, 0.2, 100)
	require.NoError(t, err)
	_, err = s.Render(src, scenario, 0.8, 100)
	require.NoError(t, err)
	frame, err := s.Render(src, scenario, 0.8, 50)
	require.NoError(t, err)
	require.Equal(t, 25, frame.Image.Bounds().Dy())
	require.Equal(t, int32(1), decodes.Load())

	_, err = s.Render(Source{ID: "b", Data: src.Data}, scenario, 0.8, 50)
	require.NoError(t, err)
	require.Equal(t, int32(2), decodes.Load())
}

func TestSession_DiscardsStaleDecode(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewSession(NewRenderer(nil), WithDecoder(func(data []byte) (image.Image, error) {
		if string(data) == "slow" {
			close(started)
			<-release
			return solidImage(10, 10), nil
		}
		return Decode(data)
	}))

	stale := make(chan error, 1)
	go func() {
		_, err := s.Render(Source{ID: "old", Data: []byte("slow")}, nil, 0, 10)
		stale <- err
	}()
	<-started

	frame, err := s.Render(Source{ID: "new", Data: encodePNG(t, solidImage(40, 20))}, nil, 0, 20)
	require.NoError(t, err)
	require.Equal(t, 10, frame.Image.Bounds().Dy())

	close(release)
	require.ErrorIs(t, <-stale, ErrSuperseded)
	require.True(t, s.Cached("new"))
	require.False(t, s.Cached("old"))
}

func TestSession_DecodeFailureClearsCache(t *testing.T) {
	s := NewSession(NewRenderer(nil))
	_, err := s.Render(Source{ID: "a", Data: encodePNG(t, solidImage(8, 8))}, nil, 0, 8)
	require.NoError(t, err)
	require.True(t, s.Cached("a"))

	_, err = s.Render(Source{ID: "b", Data: []byte{0x00, 0x01}}, nil, 0, 8)
	require.ErrorIs(t, err, ErrImageDecode)
	require.False(t, s.Cached("a"))
	require.False(t, s.Cached("b"))
}

func TestSession_LayoutNotReadySkipsDecode(t *testing.T) {
	var decodes atomic.Int32
	s := NewSession(NewRenderer(nil), WithDecoder(func([]byte) (image.Image, error) {
		decodes.Add(1)
		return nil, errors.New("must not decode")
	}))
	_, err := s.Render(Source{ID: "a"}, nil, 0, 0)
	require.ErrorIs(t, err, ErrLayoutNotReady)
	require.Equal(t, int32(0), decodes.Load())
}

func TestSession_Reset(t *testing.T) {
	s := NewSession(NewRenderer(nil))
	_, err := s.Render(Source{ID: "a", Data: encodePNG(t, solidImage(8, 8))}, nil, 0, 8)
	require.NoError(t, err)
	id, ok := s.CachedID()
	require.True(t, ok)
	require.Equal(t, "a", id)

	s.Reset()
	require.False(t, s.Cached("a"))
	_, ok = s.CachedID()
	require.False(t, ok)
}

func TestSession_ResetSupersedesPendingDecode(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewSession(NewRenderer(nil), WithDecoder(func([]byte) (image.Image, error) {
		close(started)
		<-release
		return solidImage(10, 10), nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := s.Render(Source{ID: "a"}, nil, 0, 10)
		done <- err
	}()
	<-started
	s.Reset()
	close(release)

	require.ErrorIs(t, <-done, ErrSuperseded)
	require.False(t, s.Cached("a"))
}

func TestSession_SameImageSharesPendingDecode(t *testing.T) {
	var decodes atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewSession(NewRenderer(nil), WithDecoder(func([]byte) (image.Image, error) {
		if decodes.Add(1) == 1 {
			close(started)
		}
		<-release
		return solidImage(20, 10), nil
	}))
	src := Source{ID: "b", Data: []byte("b")}

	first := make(chan error, 1)
	go func() {
		_, err := s.Render(src, scenario, 0.2, 20)
		first <- err
	}()
	<-started

	second := make(chan error, 1)
	go func() {
		_, err := s.Render(src, scenario, 0.8, 20)
		second <- err
	}()
	// даём второму вызову встать в ожидание того же декодирования
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-first)
	require.NoError(t, <-second)
	require.Equal(t, int32(1), decodes.Load())
	require.True(t, s.Cached("b"))
}

func TestSession_CacheHitSupersedesPendingDecode(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewSession(NewRenderer(nil), WithDecoder(func(data []byte) (image.Image, error) {
		if string(data) == "slow" {
			close(started)
			<-release
			return solidImage(10, 10), nil
		}
		return solidImage(20, 10), nil
	}))

	_, err := s.Render(Source{ID: "a", Data: []byte("a")}, nil, 0, 20)
	require.NoError(t, err)

	older := make(chan error, 1)
	go func() {
		_, err := s.Render(Source{ID: "b", Data: []byte("slow")}, nil, 0, 20)
		older <- err
	}()
	<-started

	_, err = s.Render(Source{ID: "a", Data: []byte("a")}, nil, 0, 20)
	require.NoError(t, err)
	close(release)

	require.ErrorIs(t, <-older, ErrSuperseded)
	require.True(t, s.Cached("a"))
	require.False(t, s.Cached("b"))
}
