package llm

import (
	"context"
	"errors"
)

// ErrNoChoices is returned when a completion response carries no choices
var ErrNoChoices = errors.New("response contained no choices")

// Client defines the interface for completion providers
type Client interface {
	// Chat sends a single non-streaming chat request and returns the response
	Chat(ctx context.Context, request *ChatRequest) (*ChatResponse, error)

	// Close cleans up any resources
	Close() error
}

// FirstChoiceText returns the first choice's message content verbatim
func FirstChoiceText(resp *ChatResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
