// Package gemini is the client for the external generative-AI collaborator.
// It produces richer insight/action pairs and free-text item analysis; every
// caller must treat it as unreliable and fall back to the heuristic engine.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spikewise/spikewise/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("gemini client disabled (no api key)")

// Client talks to the Gemini generateContent REST API. Stateless — safe to
// share, injected wherever insight generation is needed.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// New creates a client. An empty apiKey yields a disabled client whose calls
// fail fast with ErrDisabled, which pushes callers onto the heuristic path.
func New(apiKey, model string, timeout time.Duration) *Client {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the API endpoint. Test hook.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// InsightRequest is the event and profile context sent to the model.
type InsightRequest struct {
	Type          string
	Intensity     int
	Steps         int
	SleepHours    float64
	Age           int
	Gender        string
	ActivityLevel domain.ActivityLevel
	TargetSugar   int
	Streak        int
	Now           time.Time
}

// Insight asks the model for a cause-effect insight and one corrective
// action for a logged event.
func (c *Client) Insight(ctx context.Context, req InsightRequest) (domain.Advice, error) {
	var advice domain.Advice
	if !c.Enabled() {
		return advice, ErrDisabled
	}

	hour := req.Now.Hour()
	timeOfDay := "evening"
	if hour < 12 {
		timeOfDay = "morning"
	} else if hour < 18 {
		timeOfDay = "afternoon"
	}

	prompt := fmt.Sprintf(`User Profile:
- Age: %d
- Gender: %s
- Activity Level: %s
- Daily Sugar Target: %dg
- Current Streak: %d days

Current Event:
- Consumed: %s
- Intensity (1-5): %d
- Time: %s (%d:00)
- Steps Today: %d
- Sleep Last Night: %.1fh

Task:
1. Analyze the health impact of this specific sugar event given the context (time, activity, sleep).
2. Provide a SHORT, scientific "Cause-Effect" insight (max 2 sentences).
3. Suggest ONE immediate, doable corrective action (e.g., walk, water, protein).

Format response as JSON:
{
  "insight": "...",
  "action": "..."
}`,
		req.Age, req.Gender, req.ActivityLevel, req.TargetSugar, req.Streak,
		req.Type, req.Intensity, timeOfDay, hour, req.Steps, req.SleepHours)

	if err := c.generateJSON(ctx, prompt, &advice); err != nil {
		return domain.Advice{}, err
	}
	if advice.Insight == "" || advice.Action == "" {
		return domain.Advice{}, fmt.Errorf("gemini returned incomplete advice")
	}
	return advice, nil
}

// AnalyzeText extracts an item name and sugar intensity from a free-text
// food description.
func (c *Client) AnalyzeText(ctx context.Context, text string) (domain.ItemAnalysis, error) {
	var analysis domain.ItemAnalysis
	if !c.Enabled() {
		return analysis, ErrDisabled
	}

	prompt := fmt.Sprintf(`Analyze this text description of a food/sugar item.
Extract the food item name and estimated sugar intensity (1-5).
Input: %q
Format response as JSON:
{
  "item": "...",
  "intensity": 3
}`, text)

	if err := c.generateJSON(ctx, prompt, &analysis); err != nil {
		return domain.ItemAnalysis{}, err
	}
	if analysis.Item == "" {
		return domain.ItemAnalysis{}, fmt.Errorf("gemini returned no item")
	}
	return analysis, nil
}

// ─── Wire format ────────────────────────────────────────────────────────────

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generateJSON sends one prompt and decodes the model's JSON reply into out.
// The model may wrap its reply in markdown fences; they are stripped first.
func (c *Client) generateJSON(ctx context.Context, prompt string, out any) error {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("gemini returned no candidates")
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("parse model output: %w", err)
	}
	return nil
}
