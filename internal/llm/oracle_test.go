package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// haikuStub serves a fixed Messages API reply.
func haikuStub(t *testing.T, status int, text string) (*Client, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req request
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Contains(t, req.Messages[0].Content, "Level 4")
		assert.Contains(t, req.Messages[0].Content, "foggy")

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"text": text}},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key")
	c.Endpoint = srv.URL
	return c, &calls
}

func TestProphesy_ParsesEffect(t *testing.T) {
	c, calls := haikuStub(t, http.StatusOK, "Here is your vision:\n{\"text\": \"The roots drink deep tonight.\", \"effect\": \"growth_boost\"}")

	pr := NewOracle(c).Prophesy(context.Background(), 4, "foggy")

	assert.Equal(t, 1, *calls)
	assert.Equal(t, "The roots drink deep tonight.", pr.Text)
	assert.Equal(t, EffectGrowthBoost, pr.Effect)
}

func TestProphesy_NoEffect(t *testing.T) {
	c, _ := haikuStub(t, http.StatusOK, `{"text": "Silence."}`)

	pr := NewOracle(c).Prophesy(context.Background(), 4, "foggy")
	assert.Equal(t, "Silence.", pr.Text)
	assert.Equal(t, EffectNone, pr.Effect)
}

func TestProphesy_FallbacksNeverFail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		text   string
	}{
		{"server error", http.StatusInternalServerError, `{"text":"x"}`},
		{"no json", http.StatusOK, "the mists are thick"},
		{"bad effect", http.StatusOK, `{"text": "Doom.", "effect": "plague"}`},
		{"missing text", http.StatusOK, `{"effect": "gloom"}`},
		{"truncated", http.StatusOK, `{"text": "half`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := haikuStub(t, tt.status, tt.text)
			pr := NewOracle(c).Prophesy(context.Background(), 4, "foggy")
			assert.Equal(t, FoggyProphecy(), pr)
		})
	}
}

func TestProphesy_MissingKey(t *testing.T) {
	assert.Equal(t, SilentProphecy(), NewOracle(NewClient("")).Prophesy(context.Background(), 1, "foggy"))

	var o *Oracle
	assert.Equal(t, SilentProphecy(), o.Prophesy(context.Background(), 1, "foggy"))
}

func TestComplete_RateLimited(t *testing.T) {
	c, calls := haikuStub(t, http.StatusOK, `{"text":"ok"}`)
	c.SetRateLimit(1)

	_, err := c.Complete(context.Background(), "sys", "Level 4 foggy", 10)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "sys", "Level 4 foggy", 10)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, *calls)
}

func TestComplete_Errors(t *testing.T) {
	var nilClient *Client
	_, err := nilClient.Complete(context.Background(), "sys", "Level 4 foggy", 10)
	assert.ErrorIs(t, err, ErrDisabled)

	c, _ := haikuStub(t, http.StatusServiceUnavailable, "overloaded")
	_, err = c.Complete(context.Background(), "sys", "Level 4 foggy", 10)
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusServiceUnavailable, status.Code)
	assert.Contains(t, status.Body, "overloaded")
}

func TestParseProphecy_NullEffect(t *testing.T) {
	pr, err := parseProphecy(`{"text": " Quiet fields. ", "effect": null}`)
	require.NoError(t, err)
	assert.Equal(t, Prophecy{Text: "Quiet fields."}, pr)
}
