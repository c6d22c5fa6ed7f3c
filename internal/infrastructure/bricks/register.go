package bricks

import (
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/infrastructure/bricks/llmcall"
	"github.com/duragraph/duragraph/internal/infrastructure/llm"
)

// LLMConfig carries the provider keys used to construct the llm_call
// brick's clients. A blank key simply omits that provider — calls to
// it then fail at invocation time with a clear configuration error.
type LLMConfig struct {
	OpenAIKey    string
	AnthropicKey string
}

// RegisterAll wires every built-in brick pack into reg. Called once at
// process startup (spec.md §6).
func RegisterAll(reg *brick.Registry, llmConfig LLMConfig) error {
	clients := llmcall.Clients{}
	if llmConfig.OpenAIKey != "" {
		clients["openai"] = llm.NewOpenAIClient(llmConfig.OpenAIKey)
	}
	if llmConfig.AnthropicKey != "" {
		clients["anthropic"] = llm.NewAnthropicClient(llmConfig.AnthropicKey)
	}

	var all []*brick.Brick
	all = append(all, arithmeticBricks()...)
	all = append(all, booleanBricks()...)
	all = append(all, constantBricks()...)
	all = append(all, controlFlowBricks()...)
	all = append(all, debugBricks()...)
	all = append(all, selfEmittingBricks()...)
	all = append(all, llmcall.Brick(clients))

	for _, b := range all {
		if err := reg.Register(b); err != nil {
			return err
		}
	}
	return nil
}
