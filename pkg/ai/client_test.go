package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends a single user message and returns the completion", func(t *testing.T) {
		var got chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL)
		out, err := c.Complete(ctx, "test-model", "hello", 800)

		assert.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, out)
		assert.Equal(t, "test-model", got.Model)
		assert.Equal(t, 800, got.MaxTokens)
		assert.InDelta(t, 0.3, got.Temperature, 0.0001)
		if assert.Len(t, got.Messages, 1) {
			assert.Equal(t, "user", got.Messages[0].Role)
			assert.Equal(t, "hello", got.Messages[0].Content)
		}
	})

	t.Run("402 maps to the quota error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":{"message":"insufficient credits","code":402}}`))
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL)
		_, err := c.Complete(ctx, "test-model", "hello", 100)

		assert.True(t, errors.Is(err, ErrQuotaExceeded))
	})

	t.Run("In-body provider error with code 402 also maps to quota", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"message":"out of credits","code":402}}`))
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL)
		_, err := c.Complete(ctx, "test-model", "hello", 100)

		assert.True(t, errors.Is(err, ErrQuotaExceeded))
	})

	t.Run("Non-200 statuses surface as errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL)
		_, err := c.Complete(ctx, "test-model", "hello", 100)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("Empty choices is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		c := NewClient("test-key", srv.URL)
		_, err := c.Complete(ctx, "test-model", "hello", 100)

		assert.Error(t, err)
	})

	t.Run("Missing api key fails without a request", func(t *testing.T) {
		c := NewClient("", "http://127.0.0.1:1")
		_, err := c.Complete(ctx, "test-model", "hello", 100)
		assert.Error(t, err)
	})
}
