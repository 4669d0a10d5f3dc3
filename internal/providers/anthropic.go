package providers

import (
	"context"

	"modelcatalog/internal/catalog"
)

const anthropicName = "anthropic"

// anthropicModels is curated by hand: there is no public listing endpoint,
// so the live list and the defaults are the same data.
var anthropicModels = []catalog.ModelDescriptor{
	{ID: "claude-3-5-sonnet-20241022", DisplayName: "Claude 3.5 Sonnet", Description: "Most capable 3.5 model", ContextWindow: catalog.ContextWindow(200000)},
	{ID: "claude-3-5-haiku-20241022", DisplayName: "Claude 3.5 Haiku", Description: "Fastest 3.5 model", ContextWindow: catalog.ContextWindow(200000)},
	{ID: "claude-3-opus-20240229", DisplayName: "Claude 3 Opus", Description: "Strongest Claude 3 model for complex tasks", ContextWindow: catalog.ContextWindow(200000)},
	{ID: "claude-3-sonnet-20240229", DisplayName: "Claude 3 Sonnet", Description: "Balanced Claude 3 model", ContextWindow: catalog.ContextWindow(200000)},
	{ID: "claude-3-haiku-20240307", DisplayName: "Claude 3 Haiku", Description: "Compact Claude 3 model", ContextWindow: catalog.ContextWindow(200000)},
}

// AnthropicSource serves the curated Anthropic list and never calls the network.
type AnthropicSource struct{}

func NewAnthropicSource() *AnthropicSource {
	return &AnthropicSource{}
}

func (AnthropicSource) Name() string        { return anthropicName }
func (AnthropicSource) DisplayName() string { return "Anthropic" }

// ShouldFetch is always false; FetchModels would return the same curated list.
func (AnthropicSource) ShouldFetch(string) bool { return false }

func (AnthropicSource) FetchModels(context.Context, string) ([]catalog.ModelDescriptor, error) {
	return anthropicModels, nil
}

func (AnthropicSource) Defaults() []catalog.ModelDescriptor {
	return anthropicModels
}
