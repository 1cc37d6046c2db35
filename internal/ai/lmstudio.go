package ai

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"newsfeed/internal/config"
	"newsfeed/internal/models"
	"newsfeed/internal/relevance"
)

// fallbackModel is used when model discovery fails mid-request.
const fallbackModel = "mistralai/mistral-7b-instruct-v0.3"

// maxContentChars bounds how much article content is sent to the model.
const maxContentChars = 1000

// LMStudioClient talks to an LM Studio (OpenAI-compatible) endpoint.
type LMStudioClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

var _ Client = (*LMStudioClient)(nil)

// NewLMStudioClient builds a client from configuration.
func NewLMStudioClient(cfg config.AIConfig) *LMStudioClient {
	return &LMStudioClient{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Available checks whether the backend is reachable with a loaded model.
func (c *LMStudioClient) Available() bool {
	resp, err := c.httpClient.Get(c.baseURL + "/v1/models")
	if err != nil {
		log.Printf("AI backend not available: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var list modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return false
	}

	return len(list.Data) > 0
}

// availableModel returns the configured model, or the first model the
// backend reports.
func (c *LMStudioClient) availableModel() string {
	if c.model != "" {
		return c.model
	}

	resp, err := c.httpClient.Get(c.baseURL + "/v1/models")
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			var list modelsResponse
			if err := json.NewDecoder(resp.Body).Decode(&list); err == nil && len(list.Data) > 0 {
				return list.Data[0].ID
			}
		}
	}

	log.Printf("Model discovery failed, using %s", fallbackModel)
	return fallbackModel
}

// Annotate sends the article to the model and parses the structured JSON
// answer. Every failure path returns the deterministic fallback annotation
// with ok=false; enrichment errors are never propagated.
func (c *LMStudioClient) Annotate(ctx context.Context, title, content string, prefs []models.CategoryPreference) (models.Annotation, bool) {
	prompt := buildAnnotationPrompt(title, content, prefs)

	raw, err := c.chat(ctx, prompt, c.maxTokens, 0.1)
	if err != nil {
		log.Printf("Error annotating article: %v", err)
		return FallbackAnnotation(title), false
	}

	ann, err := parseAnnotation(raw)
	if err != nil {
		log.Printf("Error parsing annotation response: %v", err)
		return FallbackAnnotation(title), false
	}

	return sanitizeAnnotation(ann, title), true
}

// Embed derives a deterministic 384-element vector from the MD5 digest of
// the text. This is a stand-in for a real embedding model; the vector is
// only an opaque similarity key.
func (c *LMStudioClient) Embed(text string) []float64 {
	digest := md5.Sum([]byte(text))

	vector := make([]float64, 0, models.EmbeddingSize)
	for _, b := range digest {
		vector = append(vector, float64(b)/255.0)
	}
	for len(vector) < models.EmbeddingSize {
		vector = append(vector, 0.0)
	}

	return vector[:models.EmbeddingSize]
}

// Summarize generates a 1-2 sentence summary of article content.
func (c *LMStudioClient) Summarize(ctx context.Context, content string) (string, error) {
	if len(content) > 2000 {
		content = truncate(content, 2000)
	}

	prompt := "You are a news summarizer. Provide concise, factual summaries.\n\n" +
		"Summarize this news article in 1-2 sentences, focusing on the key facts:\n\n" + content

	summary, err := c.chat(ctx, prompt, 100, 0.1)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	return strings.TrimSpace(summary), nil
}

// chat posts a single user message to the chat-completions endpoint and
// returns the first choice. Some local models only accept user/assistant
// roles, so system instructions ride inside the user message.
func (c *LMStudioClient) chat(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	reqBody := chatRequest{
		Model:       c.availableModel(),
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat completions returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("chat completions returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// buildAnnotationPrompt embeds the JSON field contract, the fixed bias
// scale and the active category preferences into a single user message.
func buildAnnotationPrompt(title, content string, prefs []models.CategoryPreference) string {
	var prefContext strings.Builder
	for _, pref := range prefs {
		if !pref.Active {
			continue
		}
		prefContext.WriteString(fmt.Sprintf("- %s: Look for content about %s\n", pref.Category, strings.Join(pref.Keywords, ", ")))
	}

	var sb strings.Builder
	sb.WriteString("You are a news article analyzer. Respond only with valid JSON.\n\n")
	sb.WriteString(`Analyze this news article and provide a JSON response with the following structure:
{
    "category": "one of: technology, politics, business, science, health, sports, entertainment, fashion, world",
    "sentiment": "positive, negative, or neutral",
    "importance": "high, medium, or low",
    "topics": ["list", "of", "key", "topics"],
    "summary": "brief one-sentence summary",
    "political_bias": -0.2,
    "bias_confidence": 0.8,
    "bias_reasoning": "Detailed explanation of why this bias score was assigned, including specific language choices, framing decisions, source selection, and perspective indicators that influenced the assessment.",
    "relevance_boost": 0.0
}

For political bias analysis:
- -1.0 to -0.5: Left-leaning (progressive, liberal perspective)
- -0.5 to -0.2: Slight left lean
- -0.2 to 0.2: Neutral or non-political
- 0.2 to 0.5: Slight right lean
- 0.5 to 1.0: Right-leaning (conservative perspective)

For bias_reasoning, analyze and explain:
1. Language choices (loaded words, emotional language, descriptive adjectives)
2. Framing decisions (how the story is presented, what's emphasized)
3. Source selection (which voices are included/excluded, credibility indicators)
4. Perspective indicators (whose viewpoint is prioritized, balance of coverage)
5. Context and implications (what's included/omitted from the broader context)

Note:
- Fashion category includes: streetwear, high fashion, vintage clothing, designer brands, fashion trends, style guides, fashion weeks, and clothing culture.
- Set relevance_boost to 0.5 if the article matches any category preferences listed above.
`)

	if prefContext.Len() > 0 {
		sb.WriteString("\nCategory Preferences:\n")
		sb.WriteString(prefContext.String())
	}

	sb.WriteString("\nTitle: ")
	sb.WriteString(title)
	sb.WriteString("\nContent: ")
	sb.WriteString(truncate(content, maxContentChars))
	sb.WriteString("...\n\nRespond only with valid JSON, no other text.")

	return sb.String()
}

// parseAnnotation extracts the JSON object from the raw model output,
// tolerating leading and trailing prose around it.
func parseAnnotation(raw string) (models.Annotation, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return models.Annotation{}, fmt.Errorf("no JSON object in model output")
	}

	var ann models.Annotation
	if err := json.Unmarshal([]byte(raw[start:end+1]), &ann); err != nil {
		return models.Annotation{}, fmt.Errorf("unmarshal annotation: %w", err)
	}

	return ann, nil
}

// sanitizeAnnotation clamps numeric fields to their documented ranges and
// backfills required fields the model left empty.
func sanitizeAnnotation(ann models.Annotation, title string) models.Annotation {
	ann.Category = strings.ToLower(strings.TrimSpace(ann.Category))
	if !models.IsValidCategory(ann.Category) {
		ann.Category = models.CategoryUncategorized
	}

	switch strings.ToLower(strings.TrimSpace(ann.Sentiment)) {
	case models.SentimentPositive:
		ann.Sentiment = models.SentimentPositive
	case models.SentimentNegative:
		ann.Sentiment = models.SentimentNegative
	default:
		ann.Sentiment = models.SentimentNeutral
	}

	switch strings.ToLower(strings.TrimSpace(ann.Importance)) {
	case models.ImportanceHigh:
		ann.Importance = models.ImportanceHigh
	case models.ImportanceLow:
		ann.Importance = models.ImportanceLow
	default:
		ann.Importance = models.ImportanceMedium
	}

	if ann.Topics == nil {
		ann.Topics = []string{}
	}
	if strings.TrimSpace(ann.Summary) == "" {
		ann.Summary = title
	}

	ann.PoliticalBias = relevance.Clamp(ann.PoliticalBias, -1.0, 1.0)
	ann.BiasConfidence = relevance.Clamp(ann.BiasConfidence, 0.0, 1.0)
	ann.RelevanceBoost = relevance.Clamp(ann.RelevanceBoost, 0.0, 1.0)

	return ann
}

// truncate cuts s to at most n runes without splitting a multi-byte
// character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
