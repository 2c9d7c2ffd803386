// services/ollama_provider.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/models"
)

// ollamaProvider talks to a local Ollama server. Useful for running campaigns
// against open-weight models without per-token cost.
type ollamaProvider struct {
	host        string
	model       string
	costService CostService
	httpClient  *http.Client
}

func NewOllamaProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	return &ollamaProvider{
		host:        cfg.OllamaHost,
		model:       model,
		costService: costService,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute, // Local inference can be slow
		},
	}
}

func (p *ollamaProvider) GetProviderName() string {
	return "ollama"
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatResponse struct {
	Model           string            `json:"model"`
	Message         ollamaChatMessage `json:"message"`
	Done            bool              `json:"done"`
	PromptEvalCount int               `json:"prompt_eval_count"`
	EvalCount       int               `json:"eval_count"`
}

// RunQuestion implements AIProvider. Ollama has no web search; the flag is
// ignored.
func (p *ollamaProvider) RunQuestion(ctx context.Context, query string, websearch bool, location *models.Location) (*AIResponse, error) {
	prompt := buildLocationPrompt(query, location)

	requestBody := ollamaChatRequest{
		Model: p.model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: "You are a helpful assistant that provides accurate, comprehensive answers to questions."},
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.host+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody bytes.Buffer
		errorBody.ReadFrom(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errorBody.String())
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if chatResp.Message.Content == "" {
		return nil, fmt.Errorf("empty response from model %s", p.model)
	}

	result := &AIResponse{
		Response:     chatResp.Message.Content,
		InputTokens:  chatResp.PromptEvalCount,
		OutputTokens: chatResp.EvalCount,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, chatResp.PromptEvalCount, chatResp.EvalCount, false),
	}

	return result, nil
}
