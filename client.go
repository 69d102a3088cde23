package scitech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned before any request when no key is configured
var ErrMissingAPIKey = errors.New("missing AI API key")

// ChatCompleter is the part of the OpenAI client the generators use
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewChatClient creates a client for the configured OpenAI-compatible endpoint.
// It returns nil when no API key is set, so generators fail fast with ErrMissingAPIKey.
func NewChatClient(cfg Config) ChatCompleter {
	if cfg.AIAPIKey == "" {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.AIAPIKey)
	if cfg.AIBaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.AIBaseURL, "/")
	}
	if cfg.AITimeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
	}
	return openai.NewClientWithConfig(clientCfg)
}

// toolSpec describes the single function the model is forced to call
type toolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// callTool sends system+prompt, forces a call to tool and decodes its arguments into out
func callTool(ctx context.Context, client ChatCompleter, model, module, system, prompt string, tool toolSpec, logger *LLMLogger, out interface{}) error {
	if client == nil {
		return ErrMissingAPIKey
	}

	if logger != nil {
		logger.LogLLMRequest(module, prompt)
	}

	resp, err := client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        tool.Name,
						Description: tool.Description,
						Parameters:  tool.Parameters,
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: tool.Name,
				},
			},
		},
	)
	if err != nil {
		return fmt.Errorf("chat completion failed: %w", err)
	}

	if logger != nil {
		responseText := ""
		if len(resp.Choices) > 0 && len(resp.Choices[0].Message.ToolCalls) > 0 {
			responseText = resp.Choices[0].Message.ToolCalls[0].Function.Arguments
		}
		logger.LogLLMResponse(module, responseText)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("no response from %s", model)
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return fmt.Errorf("no tool calls in response")
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != tool.Name {
		return fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), out); err != nil {
		return fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	return nil
}

func stringProp(description string) map[string]interface{} {
	p := map[string]interface{}{"type": "string"}
	if description != "" {
		p["description"] = description
	}
	return p
}
