// Oracle prophecies: a short gothic prediction with an optional gameplay effect.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Effect is the mechanical side of a prophecy.
type Effect string

const (
	EffectNone        Effect = ""
	EffectGrowthBoost Effect = "growth_boost"
	EffectPriceSurge  Effect = "price_surge"
	EffectGloom       Effect = "gloom"
)

// Prophecy is the oracle's reply.
type Prophecy struct {
	Text   string `json:"text"`
	Effect Effect `json:"effect,omitempty"`
}

// SilentProphecy is returned when no API key is configured.
func SilentProphecy() Prophecy {
	return Prophecy{Text: "The spirits are silent (API Key missing)."}
}

// FoggyProphecy is returned when the oracle call fails for any reason.
func FoggyProphecy() Prophecy {
	return Prophecy{Text: "The fog is too thick to see the future."}
}

const prophecySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["text"],
  "properties": {
    "text": {"type": "string", "minLength": 1, "maxLength": 400},
    "effect": {"enum": ["growth_boost", "price_surge", "gloom", null]}
  }
}`

var prophecyValidator = jsonschema.MustCompileString("prophecy.schema.json", prophecySchema)

// Oracle turns the Haiku client into a fail-closed prophet.
type Oracle struct {
	Client *Client
}

// NewOracle creates an oracle over the given client (which may be nil).
func NewOracle(client *Client) *Oracle {
	return &Oracle{Client: client}
}

// Prophesy returns a prediction for the player's level and weather. It never
// fails: a missing key or any error yields a fallback with no effect.
func (o *Oracle) Prophesy(ctx context.Context, level int, weather string) Prophecy {
	if o == nil || !o.Client.Enabled() {
		return SilentProphecy()
	}

	pr, err := GenerateProphecy(ctx, o.Client, level, weather)
	if err != nil {
		slog.Warn("oracle fetch failed", "error", err)
		return FoggyProphecy()
	}
	return pr
}

// GenerateProphecy calls Haiku and parses the reply.
func GenerateProphecy(ctx context.Context, client *Client, level int, weather string) (Prophecy, error) {
	if !client.Enabled() {
		return Prophecy{}, ErrDisabled
	}

	response, err := client.Complete(ctx, oracleSystemPrompt, buildOracleUserPrompt(level, weather), 200)
	if err != nil {
		return Prophecy{}, fmt.Errorf("oracle prophecy: %w", err)
	}

	return parseProphecy(response)
}

const oracleSystemPrompt = `You are a cryptic, gothic oracle in a dark farming game. You speak of pale wheat, cursed pumpkins, bone chickens and the wolves beyond the mist. Never break character or mention that this is a game.

Respond ONLY with a single JSON object:
- "text": a short, atmospheric prediction about the farm (max 20 words)
- "effect": one of "growth_boost", "price_surge", "gloom", chosen at random`

func buildOracleUserPrompt(level int, weather string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The player is Level %d.\n", level)
	if weather != "" {
		fmt.Fprintf(&b, "The weather over the farm: %s.\n", weather)
	}
	b.WriteString("\nWhat do you foresee? Respond with a single JSON object.")
	return b.String()
}

func parseProphecy(response string) (Prophecy, error) {
	// Find JSON object in response.
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return Prophecy{}, fmt.Errorf("no JSON object found in response")
	}
	jsonStr := response[start : end+1]

	var doc any
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return Prophecy{}, fmt.Errorf("parse prophecy: %w", err)
	}
	if err := prophecyValidator.Validate(doc); err != nil {
		return Prophecy{}, fmt.Errorf("invalid prophecy: %w", err)
	}

	var pr Prophecy
	if err := json.Unmarshal([]byte(jsonStr), &pr); err != nil {
		return Prophecy{}, fmt.Errorf("parse prophecy: %w", err)
	}
	pr.Text = strings.TrimSpace(pr.Text)
	return pr, nil
}
