// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourmind/tourmind/internal/llm"
	"github.com/tourmind/tourmind/pkg/errutil"
)

func TestOllama_Chat(t *testing.T) {
	ctx := context.Background()

	t.Run("sends a non-streaming chat request", func(t *testing.T) {
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/chat", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Write([]byte(`{"message": {"role": "assistant", "content": "Pack a raincoat."}}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := llm.NewOllama(server.URL, "mistral")
		reply, err := client.Chat(ctx, "You are a travel assistant.", "What should I pack for Bergen?")
		require.NoError(t, err)
		assert.Equal(t, "Pack a raincoat.", reply)

		assert.Equal(t, "mistral", captured["model"])
		assert.Equal(t, false, captured["stream"])

		messages, ok := captured["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		first := messages[0].(map[string]any)
		assert.Equal(t, "system", first["role"])
		assert.Equal(t, "You are a travel assistant.", first["content"])
		second := messages[1].(map[string]any)
		assert.Equal(t, "user", second["role"])
		assert.Equal(t, "What should I pack for Bergen?", second["content"])
	})

	t.Run("omits the system message when empty", func(t *testing.T) {
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Write([]byte(`{"message": {"role": "assistant", "content": "ok"}}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := llm.NewOllama(server.URL, "mistral")
		_, err := client.Chat(ctx, "", "hello")
		require.NoError(t, err)

		messages := captured["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	})

	t.Run("empty prompt", func(t *testing.T) {
		client := llm.NewOllama("http://127.0.0.1:1", "mistral")
		_, err := client.Chat(ctx, "", "   ")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "LLM_INVALID_INPUT")
	})

	t.Run("non-200 surfaces as a coded error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
		}))
		defer server.Close()

		client := llm.NewOllama(server.URL, "missing-model")
		_, err := client.Chat(ctx, "", "hello")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "LLM_BACKEND_ERROR")
		errutil.AssertErrorContext(t, err, "status", http.StatusNotFound)
		errutil.AssertErrorContext(t, err, "model", "missing-model")
	})

	t.Run("malformed reply", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"message": `)) //nolint:errcheck
		}))
		defer server.Close()

		client := llm.NewOllama(server.URL, "mistral")
		_, err := client.Chat(ctx, "", "hello")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "LLM_DECODE_FAILED")
	})

	t.Run("empty reply content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"message": {"role": "assistant", "content": ""}}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := llm.NewOllama(server.URL, "mistral")
		_, err := client.Chat(ctx, "", "hello")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "LLM_EMPTY_REPLY")
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		client := llm.NewOllama("http://127.0.0.1:1", "mistral")
		_, err := client.Chat(ctx, "", "hello")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "LLM_REQUEST_FAILED")
	})
}

func TestOllama_Ping(t *testing.T) {
	ctx := context.Background()

	t.Run("lists installed models", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.Write([]byte(`{"models": []}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := llm.NewOllama(server.URL, "mistral")
		require.NoError(t, client.Ping(ctx))
	})

	t.Run("down endpoint", func(t *testing.T) {
		client := llm.NewOllama("http://127.0.0.1:1", "mistral")
		err := client.Ping(ctx)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "LLM_REQUEST_FAILED")
	})
}

func TestNewOllama_Defaults(t *testing.T) {
	client := llm.NewOllama("", "")
	assert.Equal(t, llm.DefaultModel, client.Model())
}
