/*
Package advisor is the planning advisor gateway: a thin client for the Gemini
generateContent REST API that turns ledger state into leave-placement
suggestions ("bridge days").

PURPOSE:
  Given the booked entries, the remaining per-type balances, and the
  configured holidays, ask the model for a short motivational summary and an
  ordered list of concrete suggestions.

FAILURE MODEL:
  Purely advisory. Every failure - missing credential, transport error,
  non-200 status, schema drift in the response - surfaces as an error that
  callers translate into "no suggestions available". Nothing in the core
  depends on this succeeding, and a gateway failure is never fatal.

LIFECYCLE:
  The client is an explicitly constructed, injected collaborator. There is no
  package-level singleton: main builds one when the API key is configured,
  and a nil *Client is the disabled-feature state.

SEE ALSO:
  - prompt.go: Prompt construction and the structured-response schema
  - api: Translates client errors into degraded responses
*/
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-ledger/ledger"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel matches the model the product ships with.
	DefaultModel = "gemini-3-flash-preview"

	defaultTimeout = 30 * time.Second
)

// ErrEmptyResponse is returned when the API answers 200 with no usable
// candidate text.
var ErrEmptyResponse = errors.New("advisor: empty model response")

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates an advisor client. The API key must be non-empty; credential
// presence is checked by the caller, which treats a nil client as the
// disabled-feature state.
func New(baseURL, apiKey, model string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("advisor: api key required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}, nil
}

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// PlanRequest is a snapshot of ledger state taken at call time. The advisor
// never mutates the ledger; its output does not feed back into it.
type PlanRequest struct {
	Entries   []ledger.LeaveEntry
	Holidays  []ledger.PublicHoliday
	Totals    ledger.QuotaTotals
	Remaining map[ledger.LeaveType]int
	Year      int
}

// Suggestion is a single piece of advice.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Dates       string `json:"dates"`
	Benefit     string `json:"benefit"`
}

// Plan is the advisor's full answer.
type Plan struct {
	Summary     string       `json:"summary"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Wire types for the generateContent call.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// =============================================================================
// PLANNING CALL
// =============================================================================

// SuggestPlan asks the model for leave-placement advice. The call runs to
// completion or failure; no timeout beyond the HTTP client's and no
// cancellation beyond ctx.
func (c *Client) SuggestPlan(ctx context.Context, req PlanRequest) (*Plan, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(req)}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   planResponseSchema,
		},
	}

	var resp generateResponse
	if err := c.doRequest(ctx, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var plan Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, fmt.Errorf("advisor: decode plan: %w", err)
	}

	c.logger.Info("advisor plan received",
		zap.Int("suggestions", len(plan.Suggestions)))
	return &plan, nil
}

// doRequest posts a generateContent request and decodes the response.
func (c *Client) doRequest(ctx context.Context, body generateRequest, out *generateResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("advisor: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("advisor: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("advisor: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("advisor: read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.Warn("advisor request rejected",
			zap.Int("status", httpResp.StatusCode))
		return fmt.Errorf("advisor: unexpected status %d", httpResp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("advisor: decode response: %w", err)
	}
	return nil
}
