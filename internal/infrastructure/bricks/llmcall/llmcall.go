// Package llmcall provides the llm_call brick: a flow node that
// forwards its prompt to a configured LLM provider and returns the
// completion. It wraps the teacher's internal/infrastructure/llm
// clients (OpenAI via sashabaranov/go-openai, Anthropic via
// anthropics/anthropic-sdk-go) exactly as internal/infrastructure/
// execution/llm_executor.go did, adapted to the brick Callable
// signature instead of the assistant/thread executor interface.
package llmcall

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/value"
	"github.com/duragraph/duragraph/internal/infrastructure/llm"
	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// callTimeout bounds one llm_call invocation. The engine has no
// built-in per-node timeout (spec.md §5); this brick enforces its own
// so a hung provider call cannot stall the single-threaded scheduler
// indefinitely.
const callTimeout = 60 * time.Second

// Clients resolves a provider name ("openai", "anthropic") to a
// configured llm.Client. Populated from environment-driven config at
// startup; a provider with no configured key is simply absent.
type Clients map[string]llm.Client

// Brick returns the llm_call descriptor bound to the given clients.
// Returns nil clients still produce a valid descriptor — calls fail at
// invocation time with a clear "no client configured" error rather
// than at registration time, so a graph can be authored before
// provider keys are available.
func Brick(clients Clients) *brick.Brick {
	return &brick.Brick{
		ID:          "llm_call",
		Label:       "LLM Call",
		Description: "Sends a prompt to a configured LLM provider and returns its completion",
		Category:    "LLM",
		Arguments: []brick.Argument{
			{ID: "model", Label: "Model", Kind: brick.KindString, Default: strPtr("gpt-4")},
			{ID: "system_prompt", Label: "System Prompt", Kind: brick.KindString, Default: strPtr("")},
			{ID: "temperature", Label: "Temperature", Kind: brick.KindNumber, Default: strPtr("0.7")},
			{ID: "max_tokens", Label: "Max Tokens", Kind: brick.KindNumber, Default: strPtr("1000")},
		},
		ExecutionInputs:  []brick.ExecutionInput{{ID: "execute", Label: "Execute"}},
		ExecutionOutputs: []brick.ExecutionOutput{{ID: "done", Label: "Done"}},
		Inputs: []brick.Input{
			{ID: "prompt", Label: "Prompt", Kind: brick.KindString},
		},
		Outputs: []brick.Output{
			{ID: "content", Label: "Content", Kind: brick.KindString},
			{ID: "provider", Label: "Provider", Kind: brick.KindString},
		},
		EmissionType: brick.FlowTriggered(),
		Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
			model := argValue(args, "model")
			provider := providerFromModel(model)
			client, ok := clients[provider]
			if !ok {
				return nil, errors.InvalidInput("provider", "no client configured for provider: "+provider)
			}

			prompt := inputValue(inputs, "prompt")
			if prompt == "" {
				return nil, errors.InvalidInput("prompt", "prompt input is required")
			}

			messages := []llm.Message{}
			if sp := argValue(args, "system_prompt"); sp != "" {
				messages = append(messages, llm.Message{Role: "system", Content: sp})
			}
			messages = append(messages, llm.Message{Role: "user", Content: prompt})

			temperature := parseFloat(argValue(args, "temperature"), 0.7)
			maxTokens := int(parseFloat(argValue(args, "max_tokens"), 1000))

			reqCtx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()

			resp, err := client.Complete(reqCtx, llm.CompletionRequest{
				Model:       model,
				Messages:    messages,
				Temperature: float32(temperature),
				MaxTokens:   maxTokens,
			})
			if err != nil {
				return nil, errors.Internal("llm call failed", err)
			}

			ctx.Raise("done")
			return []brick.OutputValue{
				{ID: "content", Value: value.EncodeString(resp.Content)},
				{ID: "provider", Value: value.EncodeString(provider)},
			}, nil
		},
	}
}

// providerFromModel mirrors llm_executor.go's getProviderFromModel.
func providerFromModel(model string) string {
	switch {
	case strings.HasPrefix(model, "gpt-"), strings.HasPrefix(model, "o1-"), strings.HasPrefix(model, "chatgpt"):
		return "openai"
	case strings.HasPrefix(model, "claude-"):
		return "anthropic"
	default:
		return "openai"
	}
}

func argValue(args []brick.ArgValue, id string) string {
	for _, a := range args {
		if a.ID == id {
			return a.Value
		}
	}
	return ""
}

func inputValue(inputs []brick.InputValue, id string) string {
	for _, in := range inputs {
		if in.ID == id {
			raw, err := value.DecodeString(in.Value)
			if err != nil {
				return in.Value
			}
			return raw
		}
	}
	return ""
}

func parseFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func strPtr(s string) *string { return &s }
