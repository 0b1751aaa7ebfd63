package farmhand

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/hollowfarm/internal/farm"
)

// ActResult is the response from POST /api/v1/intent.
type ActResult struct {
	Snapshot farm.Snapshot `json:"snapshot"`
	Outcome  farm.Outcome  `json:"outcome"`
}

// Actor sends intents to the farm.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends one intent to POST /api/v1/intent.
func (a *Actor) Act(in farm.Intent) (*ActResult, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal intent: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+"/api/v1/intent", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST intent: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intent %s failed (%d): %s", in.Type, resp.StatusCode, string(respBody))
	}

	var result ActResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// ActAll sends a decision's intents in order, stopping at the first
// transport error or rejected intent.
func (a *Actor) ActAll(d Decision) (*ActResult, error) {
	var last *ActResult
	for _, in := range d.Intents {
		res, err := a.Act(in)
		if err != nil {
			return last, err
		}
		last = res
		if !res.Outcome.Applied {
			break
		}
	}
	return last, nil
}
