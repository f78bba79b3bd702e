package mux

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestCreateUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/video/v1/uploads", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)

		body, _ := io.ReadAll(r.Body)
		var req createUploadRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "7", req.NewAssetSettings.Passthrough)
		assert.Equal(t, []string{"public"}, req.NewAssetSettings.PlaybackPolicy)
		assert.Equal(t, "*", req.CORSOrigin)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"up_1","url":"https://storage.mux.com/up_1","status":"waiting"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, TokenID: "id", TokenSecret: "secret", Retry: fastRetry()})
	up, err := c.CreateUpload(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "up_1", up.ID)
	assert.Equal(t, "https://storage.mux.com/up_1", up.URL)
}

func TestCreateUpload_RetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"up_2","url":"https://u"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: fastRetry()})
	up, err := c.CreateUpload(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "up_2", up.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCreateUpload_NoRetryOn4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: fastRetry()})
	_, err := c.CreateUpload(context.Background(), "1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDeleteAsset_NotFoundIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/video/v1/assets/asset_1", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: fastRetry()})
	assert.NoError(t, c.DeleteAsset(context.Background(), "asset_1"))
}

func TestDeleteAsset_ServerErrorAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: fastRetry()})
	err := c.DeleteAsset(context.Background(), "asset_1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := withRetry(ctx, fastRetry(), func(ctx context.Context) error {
		calls++
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
