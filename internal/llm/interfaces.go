// Package llm talks to the hosted language model behind the symptom checker
package llm

import "context"

// TextGenerator is the interface for single-turn chat completion
type TextGenerator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	GetModel() string
}
