// Package genai invokes the generative chat model that produces assistant
// replies. It speaks the generateMessage dialogue protocol: a grounding
// context string plus alternating author-tagged messages, one candidate, a
// fixed sampling temperature.
//
// Failure policy: the invoker never surfaces an error. Auth problems,
// transport failures, empty candidate lists, and malformed responses are all
// logged and collapsed into a fixed, user-safe fallback reply, so the visitor
// always gets an answer. Calls are not retried.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bighackai/commerce-chat-backend/internal/domain"
)

// DefaultBaseURL is the generative-language API origin.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta2"

// DefaultModel is the chat model invoked for replies.
const DefaultModel = "models/chat-bison-001"

// FallbackReply is returned whenever the model cannot produce a candidate.
const FallbackReply = "Hey buddy, I lost my mind. Will you try later?"

// Message authors in the generateMessage dialogue format.
const (
	authorAssistant = 0
	authorUser      = 1
)

// Client calls the generative chat model. Construct with NewClient.
type Client struct {
	// BaseURL is the API origin; tests point it at a local fake.
	BaseURL string
	// APIKey authorizes requests.
	APIKey string
	// Model is the model resource name, e.g. "models/chat-bison-001".
	Model string
	// Temperature is the fixed sampling temperature.
	Temperature float64
	// CandidateCount bounds how many candidates the model generates.
	CandidateCount int
	// HTTPClient performs requests; its Timeout bounds the invocation.
	HTTPClient *http.Client
}

// NewClient returns a Client with production defaults for the given key.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:        DefaultBaseURL,
		APIKey:         apiKey,
		Model:          DefaultModel,
		Temperature:    0.5,
		CandidateCount: 1,
		HTTPClient:     &http.Client{Timeout: timeout},
	}
}

// message is one author-tagged dialogue entry.
type message struct {
	Author  int    `json:"author"`
	Content string `json:"content"`
}

// generateRequest is the generateMessage payload.
type generateRequest struct {
	Prompt struct {
		Context  string    `json:"context"`
		Messages []message `json:"messages"`
	} `json:"prompt"`
	Temperature    float64 `json:"temperature"`
	CandidateCount int     `json:"candidateCount"`
}

// generateResponse carries the model's candidates.
type generateResponse struct {
	Candidates []struct {
		Content string `json:"content"`
	} `json:"candidates"`
}

// Reply invokes the model once with the grounding context and the normalized
// dialogue and returns the first candidate's text. Every failure mode returns
// FallbackReply instead of an error.
func (c *Client) Reply(ctx context.Context, grounding string, turns []domain.ChatTurn) string {
	reply, err := c.generate(ctx, grounding, turns)
	if err != nil {
		log.Error().Err(err).Str("model", c.Model).Msg("chat model invocation failed")
		return FallbackReply
	}
	return reply
}

// generate performs the HTTP round trip. Split from Reply so tests can assert
// the error taxonomy without going through the fallback.
func (c *Client) generate(ctx context.Context, grounding string, turns []domain.ChatTurn) (string, error) {
	var reqBody generateRequest
	reqBody.Prompt.Context = grounding
	reqBody.Prompt.Messages = toMessages(turns)
	reqBody.Temperature = c.Temperature
	reqBody.CandidateCount = c.CandidateCount

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("genai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateMessage?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("genai: model endpoint returned %s", resp.Status)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("genai: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == "" {
		return "", fmt.Errorf("genai: model returned no candidates")
	}
	return parsed.Candidates[0].Content, nil
}

// toMessages maps coalesced turns onto the wire format. Role mapping mirrors
// the normalizer: assistant → author 0, user → author 1.
func toMessages(turns []domain.ChatTurn) []message {
	out := make([]message, 0, len(turns))
	for _, t := range turns {
		author := authorUser
		if t.Role == domain.RoleAssistant {
			author = authorAssistant
		}
		out = append(out, message{Author: author, Content: t.Content})
	}
	return out
}
