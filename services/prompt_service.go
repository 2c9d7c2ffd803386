// services/prompt_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/geo-agent/geo-workflows/internal/config"
)

// promptService generates campaign prompts: the questions a prospective
// customer in a given location would ask an assistant about a business type.
type promptService struct {
	client *openai.Client
	model  string
}

func NewPromptService(cfg *config.Config) PromptService {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	return &promptService{
		client: &client,
		model:  "gpt-4.1-mini",
	}
}

// GeneratedPrompts is the structured output shape for prompt generation.
type GeneratedPrompts struct {
	Prompts []string `json:"prompts" jsonschema_description:"Questions a prospective customer would ask an AI assistant"`
}

var GeneratedPromptsSchema = GenerateSchema[GeneratedPrompts]()

func (s *promptService) GeneratePrompts(ctx context.Context, businessType, location string, count int) ([]string, error) {
	if businessType == "" {
		return nil, fmt.Errorf("business type is required")
	}
	if count <= 0 {
		count = 10
	}
	if location == "" {
		location = "the United States"
	}

	fmt.Printf("[PromptService.GeneratePrompts] Generating %d prompts for %q in %s\n", count, businessType, location)

	instruction := fmt.Sprintf(
		"Generate exactly %d distinct questions that a prospective customer in %s would ask an AI assistant when looking for a %s. "+
			"Questions should be natural, varied in phrasing, and must not name any specific company.",
		count, location, businessType)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "generated_prompts",
		Description: openai.String("Generated customer questions"),
		Schema:      GeneratedPromptsSchema,
		Strict:      openai.Bool(true),
	}

	response, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You generate realistic consumer search questions for local businesses."),
			openai.UserMessage(instruction),
		},
		Model: openai.ChatModel(s.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.9),
		MaxTokens:   openai.Int(2000),
	})
	if err != nil {
		return nil, fmt.Errorf("prompt generation failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	var generated GeneratedPrompts
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse generated prompts: %w", err)
	}
	if len(generated.Prompts) == 0 {
		return nil, fmt.Errorf("model returned no prompts")
	}

	if len(generated.Prompts) > count {
		generated.Prompts = generated.Prompts[:count]
	}
	return generated.Prompts, nil
}
