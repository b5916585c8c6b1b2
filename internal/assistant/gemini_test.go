package assistant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianderson/ClerkBot/internal/assistant"
)

func geminiResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestGeminiClient(t *testing.T) {
	ctx := context.Background()

	var lastBody map[string]any
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/models/gemini-3-flash-preview:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiResponse("Three key points were discussed."))
	}))
	defer mockServer.Close()

	client := assistant.NewGeminiClient(mockServer.URL, "test-key", "gemini-3-flash-preview", 5*time.Second, zerolog.Nop())

	t.Run("Summarize - Success", func(t *testing.T) {
		out, err := client.Summarize(ctx, "Sarah: let's get started")
		require.NoError(t, err)
		assert.Equal(t, "Three key points were discussed.", out)
		assert.NotContains(t, lastBody, "system_instruction")
	})

	t.Run("Ask - carries system instruction and context", func(t *testing.T) {
		out, err := client.Ask(ctx, "What did Sarah say?", "Sarah: hello")
		require.NoError(t, err)
		assert.NotEmpty(t, out)
		require.Contains(t, lastBody, "system_instruction")

		raw, err := json.Marshal(lastBody["contents"])
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Context from meeting: Sarah: hello")
		assert.Contains(t, string(raw), "User Question: What did Sarah say?")
	})

	t.Run("DraftFollowUp - joins items", func(t *testing.T) {
		_, err := client.DraftFollowUp(ctx, []string{"Export list", "Draft campaign"})
		require.NoError(t, err)
		raw, err := json.Marshal(lastBody["contents"])
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Export list, Draft campaign")
	})
}

func TestGeminiClientUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("server error", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer mockServer.Close()

		client := assistant.NewGeminiClient(mockServer.URL, "k", "m", time.Second, zerolog.Nop())
		_, err := client.Summarize(ctx, "anything")
		assert.ErrorIs(t, err, assistant.ErrUnavailable)
	})

	t.Run("empty candidates", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer mockServer.Close()

		client := assistant.NewGeminiClient(mockServer.URL, "k", "m", time.Second, zerolog.Nop())
		_, err := client.Ask(ctx, "q", "ctx")
		assert.ErrorIs(t, err, assistant.ErrUnavailable)
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := assistant.NewGeminiClient("http://127.0.0.1:1", "k", "m", 200*time.Millisecond, zerolog.Nop())
		_, err := client.Summarize(ctx, "anything")
		assert.ErrorIs(t, err, assistant.ErrUnavailable)
	})
}
