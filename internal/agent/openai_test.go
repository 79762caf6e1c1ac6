package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/autotag/internal/foundation/errors"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func fakeServer(t *testing.T, status int, content string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"` + content + `","type":"error"}}`))
			return
		}
		resp := map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-5-mini",
			"choices": []any{map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_Generate_SendsInstructionAndPrompt(t *testing.T) {
	var seen chatRequest
	srv := fakeServer(t, http.StatusOK, `["Docusaurus", "React"]`, &seen)

	a, err := NewOpenAI(Config{
		Model:       "openai/gpt-5-mini",
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Instruction: "respond with JSON",
	})
	require.NoError(t, err)
	require.Equal(t, "gpt-5-mini", a.Model())
	require.Equal(t, "openai", a.Provider())

	out, err := a.Generate(context.Background(), "タイトル: x")
	require.NoError(t, err)
	require.Equal(t, `["Docusaurus", "React"]`, out)

	require.Equal(t, "gpt-5-mini", seen.Model)
	require.Len(t, seen.Messages, 2)
	require.Equal(t, "system", seen.Messages[0].Role)
	require.Equal(t, "respond with JSON", seen.Messages[0].Content)
	require.Equal(t, "user", seen.Messages[1].Role)
	require.Equal(t, "タイトル: x", seen.Messages[1].Content)
}

func TestOpenAI_Generate_RateLimitIsClassified(t *testing.T) {
	srv := fakeServer(t, http.StatusTooManyRequests, "slow down", nil)
	a, err := NewOpenAI(Config{Model: "gpt-5-mini", APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = a.Generate(context.Background(), "p")
	require.Error(t, err)
	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, ferrors.CategoryAgent, classified.Category())
	require.Equal(t, ferrors.RetryRateLimit, classified.RetryStrategy())
}

func TestOpenAI_Generate_UnauthorizedIsAuth(t *testing.T) {
	srv := fakeServer(t, http.StatusUnauthorized, "bad key", nil)
	a, err := NewOpenAI(Config{Model: "gpt-5-mini", APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = a.Generate(context.Background(), "p")
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryAuth))
}

func TestOpenAI_Generate_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	a, err := NewOpenAI(Config{Model: "gpt-5-mini", APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = a.Generate(ctx, "p")
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryAgent))
}

func TestNewOpenAI_RequiresAPIKeyExceptOllama(t *testing.T) {
	_, err := NewOpenAI(Config{Model: "gpt-5-mini"})
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	a, err := NewOpenAI(Config{Model: "ollama/llama3.2"})
	require.NoError(t, err)
	require.Equal(t, "ollama", a.Provider())
	require.Equal(t, "llama3.2", a.Model())
}

func TestNewOpenAI_DefaultModel(t *testing.T) {
	a, err := NewOpenAI(Config{APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, "gpt-5-mini", a.Model())
}

func TestSplitModel(t *testing.T) {
	cases := []struct {
		id, provider, model string
	}{
		{"openai/gpt-5-mini", "openai", "gpt-5-mini"},
		{"gpt-4o", "", "gpt-4o"},
		{"openrouter/anthropic/claude-sonnet", "openrouter", "anthropic/claude-sonnet"},
		{"meta-llama/Llama-3.1-8B", "", "meta-llama/Llama-3.1-8B"},
		{" DeepSeek/deepseek-chat ", "deepseek", "deepseek-chat"},
	}
	for _, c := range cases {
		p, m := SplitModel(c.id)
		require.Equal(t, c.provider, p, c.id)
		require.Equal(t, c.model, m, c.id)
	}
}

func TestClassify_PassesThroughClassified(t *testing.T) {
	orig := ferrors.ConfigError("x").Build()
	require.Same(t, orig, Classify(orig))
	require.Nil(t, Classify(nil))
	require.True(t, ferrors.HasCategory(Classify(errors.New("dial tcp: refused")), ferrors.CategoryAgent))
}

func TestFunc_AdaptsFunction(t *testing.T) {
	var a Agent = Func(func(_ context.Context, p string) (string, error) { return "echo:" + p, nil })
	out, err := a.Generate(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, "echo:hi", out)
}
