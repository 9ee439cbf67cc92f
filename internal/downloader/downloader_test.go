package downloader

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func serve(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestFetch_Success(t *testing.T) {
	payload := pngBytes(t, 4, 3)
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	d := NewDownloader(Config{}, nil)
	data, err := d.Fetch(context.Background(), drive.FileRecord{ID: "1", Name: "a.png", DownloadURL: url})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetch_MissingReference(t *testing.T) {
	d := NewDownloader(Config{}, nil)
	_, err := d.Fetch(context.Background(), drive.FileRecord{ID: "1", Name: "a.png"})
	require.Error(t, err)
	assert.True(t, drive.IsType(err, drive.ErrMissingReference))
}

func TestFetch_DeclaredSizeTooLarge(t *testing.T) {
	var calls atomic.Int32
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	d := NewDownloader(Config{MaxFileSizeMB: 1}, nil)
	_, err := d.Fetch(context.Background(), drive.FileRecord{
		ID: "1", Name: "big.png", DownloadURL: url, Size: drive.ByteSize(2 * 1024 * 1024),
	})
	require.Error(t, err)
	assert.True(t, drive.IsType(err, drive.ErrTooLarge))
	assert.Equal(t, int32(0), calls.Load())
}

func TestFetch_BodyTooLarge(t *testing.T) {
	payload := append(pngBytes(t, 1, 1), make([]byte, 1024*1024)...)
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	d := NewDownloader(Config{MaxFileSizeMB: 1}, nil)
	_, err := d.Fetch(context.Background(), drive.FileRecord{ID: "1", Name: "big.png", DownloadURL: url})
	require.Error(t, err)
	assert.True(t, drive.IsType(err, drive.ErrTooLarge))
}

func TestFetch_TransportErrorSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	d := NewDownloader(Config{}, nil)
	_, err := d.Fetch(context.Background(), drive.FileRecord{ID: "1", Name: "a.png", DownloadURL: url})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *drive.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, drive.ErrTransport, apiErr.Type)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Contains(t, apiErr.Message, "Service Unavailable")
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestFetch_TransportErrorKeepsServerReason(t *testing.T) {
	d := NewDownloader(Config{}, nil)
	d.httpClient.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Status:     "429 Slow Down",
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Request:    r,
		}, nil
	})

	_, err := d.Fetch(context.Background(), drive.FileRecord{ID: "1", Name: "a.png", DownloadURL: "https://download.example.com/1"})
	require.Error(t, err)

	var apiErr *drive.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Contains(t, apiErr.Message, "Slow Down")
	assert.NotContains(t, apiErr.Message, "Too Many Requests")
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	payload := pngBytes(t, 2, 2)
	var calls atomic.Int32
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(payload)
	})

	d := NewDownloader(Config{RetryAttempts: 3, RetryDelay: time.Millisecond}, nil)
	data, err := d.Fetch(context.Background(), drive.FileRecord{ID: "1", Name: "a.png", DownloadURL: url})
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	d := NewDownloader(Config{RetryAttempts: 3, RetryDelay: time.Millisecond}, nil)
	_, err := d.Fetch(context.Background(), drive.FileRecord{ID: "1", Name: "a.png", DownloadURL: url})
	require.Error(t, err)
	assert.True(t, drive.IsType(err, drive.ErrTransport))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_RejectsNonImagePayload(t *testing.T) {
	url := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>Virus scan warning</body></html>"))
	})

	d := NewDownloader(Config{}, nil)
	_, err := d.Fetch(context.Background(), drive.FileRecord{ID: "1", Name: "a.png", DownloadURL: url})
	require.Error(t, err)
	assert.True(t, drive.IsType(err, drive.ErrUnsupportedContent))
}

func TestIsFileSizeAllowed(t *testing.T) {
	d := NewDownloader(Config{MaxFileSizeMB: 2}, nil)
	assert.True(t, d.IsFileSizeAllowed(2*1024*1024))
	assert.False(t, d.IsFileSizeAllowed(2*1024*1024+1))
}
