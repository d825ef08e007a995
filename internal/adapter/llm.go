package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"concierge/pkg/logger"
)

// LLMAdapter handles communication with the LLM through an OpenAI-compatible
// gateway (e.g. LiteLLM). It performs no retries; transient failures surface
// to the orchestrator, whose fallback path owns degradation.
type LLMAdapter struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	configured  bool
	logger      *zap.Logger
}

// Options tunes generation parameters
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewLLMAdapter creates a new LLM adapter against the given gateway
func NewLLMAdapter(baseURL, apiKey string, opts Options) *LLMAdapter {
	// Gateways like LiteLLM accept a placeholder key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &LLMAdapter{
		client:      openai.NewClientWithConfig(config),
		model:       opts.Model,
		temperature: temperature,
		maxTokens:   maxTokens,
		configured:  baseURL != "" && opts.Model != "",
		logger:      logger.Get(),
	}
}

// Configured reports whether the adapter has a gateway and model set
func (a *LLMAdapter) Configured() bool {
	return a.configured
}

// Model returns the configured model ID
func (a *LLMAdapter) Model() string {
	return a.model
}

// Tool represents a function that can be called by the LLM
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition defines a function that can be called
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Response represents the LLM's response
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolCall represents a function call requested by the LLM
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// Generate sends a chat completion request and parses content plus any
// requested tool calls. Any transport or non-2xx failure returns an error.
func (a *LLMAdapter) Generate(ctx context.Context, systemPrompt, userMsg string, tools []Tool) (*Response, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: userMsg,
		},
	}

	openaiTools := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		openaiTools = append(openaiTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Tools:       openaiTools,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.String("model", a.model),
		)
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in LLM response")
	}

	choice := resp.Choices[0]
	response := &Response{
		Content:   choice.Message.Content,
		ToolCalls: []ToolCall{},
	}

	for _, tc := range choice.Message.ToolCalls {
		toolCall := ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
		}

		args, err := parseJSONArguments(tc.Function.Arguments)
		if err != nil {
			a.logger.Warn("Failed to parse tool call arguments",
				zap.String("tool_id", tc.ID),
				zap.String("tool", tc.Function.Name),
				zap.Error(err),
			)
			args = make(map[string]interface{})
		}
		toolCall.Arguments = args

		response.ToolCalls = append(response.ToolCalls, toolCall)
	}

	a.logger.Debug("LLM response generated",
		zap.String("model", a.model),
		zap.Int("tool_calls", len(response.ToolCalls)),
		zap.Bool("has_content", response.Content != ""),
	)

	return response, nil
}

// parseJSONArguments parses the JSON string arguments into a map
func parseJSONArguments(jsonStr string) (map[string]interface{}, error) {
	if jsonStr == "" {
		return make(map[string]interface{}), nil
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &args); err != nil {
		return nil, fmt.Errorf("failed to parse arguments: %w", err)
	}
	return args, nil
}
