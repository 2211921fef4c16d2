package agent

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

	"github.com/google/uuid"

	"liquidshuffle/logger"
	"liquidshuffle/model"
)

// ErrMalformedResponse indicates the chat model replied with something that
// could not be parsed into an album suggestion.
var ErrMalformedResponse = errors.New("malformed suggestion response")

// SuggestionAgentConfig contains configuration for the suggestion agent.
type SuggestionAgentConfig struct {
	APIBaseURL  string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// SuggestionAgent asks an OpenAI-compatible chat API for one album guess.
// It returns a raw title and artist pair; catalog resolution of the guess
// belongs to the caller.
type SuggestionAgent struct {
	config     *SuggestionAgentConfig
	httpClient *http.Client
}

// System prompt for the suggestion agent. The model answers with a single
// JSON object so the reply survives strict parsing.
const SuggestionSystemPrompt = `You are a music curator with encyclopedic knowledge of recorded albums.

When asked for a recommendation you reply with EXACTLY one JSON object and
nothing else, in this shape:

{"album": "<album title>", "artist": "<artist name>"}

Rules:
1. Recommend one real, officially released studio album.
2. Never recommend singles, remix EPs, karaoke, fitness or spoken word records.
3. Never repeat an album from the exclusion list you are given.
4. Vary your answers between requests. Obscure but excellent picks are welcome.
5. No markdown, no commentary, no code fences. JSON only.`

// NewSuggestionAgent creates a suggestion agent.
func NewSuggestionAgent(config *SuggestionAgentConfig) *SuggestionAgent {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SuggestionAgent{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// suggestionGuess is the JSON shape the model is instructed to return.
type suggestionGuess struct {
	Album  string `json:"album"`
	Artist string `json:"artist"`
}

// Suggest requests one album guess constrained by the filters, the discovery
// mode and the exclusion list.
func (a *SuggestionAgent) Suggest(ctx context.Context, filters model.Filters, mode string, exclude []string) (string, string, error) {
	messages := a.buildMessages(filters, mode, exclude)

	reqBody := model.OpenAIChatRequest{
		Model:       a.config.Model,
		Messages:    messages,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
		Stream:      false,
		Format:      &model.OpenAIResponseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.config.APIBaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp model.OpenAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", "", fmt.Errorf("no response choices returned")
	}

	guess, err := parseGuess(chatResp.Choices[0].Message.Content)
	if err != nil {
		return "", "", err
	}

	logger.Info("[SuggestionAgent] album suggested",
		logger.String("album", guess.Album),
		logger.String("artist", guess.Artist),
		logger.String("mode", mode))
	return guess.Album, guess.Artist, nil
}

// buildMessages constructs the message array for the API call.
func (a *SuggestionAgent) buildMessages(filters model.Filters, mode string, exclude []string) []model.OpenAIChatMessage {
	return []model.OpenAIChatMessage{
		{Role: "system", Content: SuggestionSystemPrompt},
		{Role: "user", Content: buildPrompt(filters, mode, exclude)},
	}
}

// buildPrompt renders the user message. A random token is embedded so the
// model cannot settle into returning the same album for identical filters.
func buildPrompt(filters model.Filters, mode string, exclude []string) string {
	var b strings.Builder

	switch mode {
	case model.ModeLibrary:
		b.WriteString("Recommend an album that a long-time record collector would own.\n")
	case model.ModeTaste:
		b.WriteString("Recommend an album matching the taste implied by the exclusion list below, but not on it.\n")
	default:
		b.WriteString("Recommend an album I am unlikely to have heard before.\n")
	}

	if s := summarizeFilters(filters); s != "" {
		b.WriteString("Constraints: ")
		b.WriteString(s)
		b.WriteString("\n")
	}

	if len(exclude) > 0 {
		b.WriteString("Do NOT suggest any of these albums: ")
		b.WriteString(strings.Join(exclude, "; "))
		b.WriteString("\n")
	}

	b.WriteString("Variation token: ")
	b.WriteString(uuid.NewString())
	return b.String()
}

// summarizeFilters turns the filter struct into a prompt fragment.
func summarizeFilters(filters model.Filters) string {
	parts := make([]string, 0, 5)
	if filters.Decade != "" {
		parts = append(parts, "released in the "+filters.Decade)
	}
	if filters.Year != "" {
		parts = append(parts, "released in "+filters.Year)
	}
	if filters.Month != "" {
		parts = append(parts, "originally released in the month of "+filters.Month)
	}
	if filters.Genre != "" {
		parts = append(parts, "genre "+filters.Genre)
	}
	if filters.Artist != "" {
		parts = append(parts, "by the artist "+filters.Artist)
	}
	return strings.Join(parts, ", ")
}

// parseGuess extracts the JSON guess from the model reply. Replies wrapped
// in markdown code fences are unwrapped first; models add them even when
// told not to.
func parseGuess(content string) (*suggestionGuess, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var guess suggestionGuess
	if err := json.Unmarshal([]byte(cleaned), &guess); err != nil {
		logger.Warn("failed to parse suggestion reply",
			logger.String("content", content),
			logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, content)
	}

	guess.Album = strings.TrimSpace(guess.Album)
	guess.Artist = strings.TrimSpace(guess.Artist)
	if guess.Album == "" || guess.Artist == "" {
		return nil, fmt.Errorf("%w: missing album or artist", ErrMalformedResponse)
	}
	return &guess, nil
}
