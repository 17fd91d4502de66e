package service

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/strivetech/homematch/internal/model"
)

// OpenAIToolCaller implements ToolCaller against any OpenAI-compatible chat
// completions endpoint.
type OpenAIToolCaller struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewOpenAIToolCaller builds a tool caller. baseURL may be empty for the
// default OpenAI endpoint.
func NewOpenAIToolCaller(apiKey, baseURL, modelName string) *OpenAIToolCaller {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIToolCaller{
		client:      openai.NewClient(opts...),
		model:       modelName,
		temperature: 0.1,
		maxTokens:   500,
	}
}

// extractionTools are the two function schemas offered to the model.
var extractionTools = []openai.ChatCompletionToolParam{
	{
		Type: "function",
		Function: openai.FunctionDefinitionParam{
			Name:        toolExtractPreferences,
			Description: openai.String("Record property search preferences stated in the user's message."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"location":     map[string]interface{}{"type": "string", "description": "City, state, or zip code"},
					"maxPrice":     map[string]interface{}{"type": "number", "description": "Maximum budget in dollars"},
					"minBedrooms":  map[string]interface{}{"type": "integer"},
					"minBathrooms": map[string]interface{}{"type": "number"},
					"mustHaveFeatures": map[string]interface{}{
						"type": "array", "items": map[string]interface{}{"type": "string"},
					},
					"niceToHaveFeatures": map[string]interface{}{
						"type": "array", "items": map[string]interface{}{"type": "string"},
					},
					"propertyType": map[string]interface{}{
						"type": "string",
						"enum": []string{"single-family", "condo", "townhouse", "multi-family", "any"},
					},
					"timeline": map[string]interface{}{
						"type": "string",
						"enum": []string{"ASAP", "WITHIN_1_MONTH", "WITHIN_3_MONTHS", "WITHIN_6_MONTHS", "FLEXIBLE"},
					},
					"isFirstTimeBuyer": map[string]interface{}{"type": "boolean"},
					"currentSituation": map[string]interface{}{
						"type": "string",
						"enum": []string{"renting", "selling", "first-time", "relocating", "unknown"},
					},
				},
			},
		},
	},
	{
		Type: "function",
		Function: openai.FunctionDefinitionParam{
			Name:        toolExtractContact,
			Description: openai.String("Record contact details the user volunteered."),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"name":  map[string]interface{}{"type": "string"},
					"email": map[string]interface{}{"type": "string"},
					"phone": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}

// CallTools runs one completion and returns the tool calls the model made.
func (c *OpenAIToolCaller) CallTools(ctx context.Context, system string, history []model.Message, message string) ([]ToolCall, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(system))
	for _, m := range history {
		if m.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(message))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               openai.ChatModel(c.model),
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxTokens),
		Tools:               extractionTools,
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	var calls []ToolCall
	for _, tc := range resp.Choices[0].Message.ToolCalls {
		calls = append(calls, ToolCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}
	return calls, nil
}
