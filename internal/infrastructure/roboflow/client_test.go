package roboflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestClient_Detect(t *testing.T) {
	img := pngBytes(t, 64, 48)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/acne-away-v1/2", r.URL.Path)
		require.Equal(t, "secret", r.URL.Query().Get("api_key"))
		require.Equal(t, "10", r.URL.Query().Get("confidence"))
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.Equal(t, base64.StdEncoding.EncodeToString(img), string(body))

		_, _ = w.Write([]byte(`{"predictions":[{"x":10,"y":12,"width":4,"height":6,"class":"Pustule","confidence":0.6}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "secret", DetectModel: "acne-away-v1/2", DetectURL: srv.URL, Confidence: 10})
	res, err := c.Detect(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, 64, res.ImageWidth)
	require.Equal(t, 48, res.ImageHeight)
	require.Len(t, res.Detections, 1)
	require.Equal(t, "Pustule", res.Detections[0].Label)
	require.Equal(t, img, res.Image)
}

func TestClient_DetectProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "bad", DetectModel: "m/1", DetectURL: srv.URL})
	_, err := c.Detect(context.Background(), pngBytes(t, 4, 4))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.Status)
	require.Equal(t, "Invalid API key", apiErr.Message)
}

func TestClient_DetectTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	c := NewClient(Options{DetectModel: "m/1", DetectURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Detect(context.Background(), pngBytes(t, 4, 4))
	require.ErrorIs(t, err, ErrTimeout)
}

func TestClient_DetectKeepsGoodPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"image":{"width":100,"height":80},"predictions":[
			{"x":10,"y":12,"width":4,"height":6,"class":"Papule","confidence":0.9},
			{"x":30,"y":30,"width":4,"class":"Pustule","confidence":0.6}]}`))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	c := NewClient(Options{DetectModel: "m/1", DetectURL: srv.URL, Logger: zap.New(core)})
	res, err := c.Detect(context.Background(), pngBytes(t, 4, 4))
	require.NoError(t, err)
	require.Len(t, res.Detections, 1)
	require.Equal(t, "Papule", res.Detections[0].Label)
	require.Equal(t, 1, res.Rejected)
	require.Equal(t, 100, res.ImageWidth)
	require.Equal(t, 1, logs.FilterMessage("skipping unrecognized prediction").Len())
}

func TestClient_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/acne-type/3", r.URL.Path)
		_, _ = w.Write([]byte(`{"top":"Papules","confidence":0.81,"predictions":[{"class":"Papules","confidence":0.81},{"class":"Cysts","confidence":0.1}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{ClassifyModel: "acne-type/3", ClassifyURL: srv.URL})
	cls, err := c.Classify(context.Background(), pngBytes(t, 4, 4))
	require.NoError(t, err)
	require.Equal(t, "Papules", cls.Top)
	require.Equal(t, 0.81, cls.Confidence)
	require.Len(t, cls.Classes, 2)
	require.Equal(t, "Cysts", cls.Classes[1].Class)
}

func TestClassScores_Map(t *testing.T) {
	scores := classScores(map[string]any{
		"a": map[string]any{"confidence": 0.2},
		"b": map[string]any{"confidence": 0.7},
	})
	require.Len(t, scores, 2)
	require.Equal(t, "b", scores[0].Class)
}
