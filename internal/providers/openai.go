package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"modelcatalog/internal/catalog"
)

const (
	openAIName           = "openai"
	openAIDefaultBaseURL = "https://api.openai.com/v1"

	// openAIModelFilter keeps chat models and drops embeddings, audio, moderation, etc.
	openAIModelFilter = "gpt"
)

var openAIDefaults = []catalog.ModelDescriptor{
	{ID: "gpt-4o", DisplayName: "GPT-4o", Description: "Flagship multimodal model", ContextWindow: catalog.ContextWindow(128000)},
	{ID: "gpt-4o-mini", DisplayName: "GPT-4o Mini", Description: "Fast, low-cost small model", ContextWindow: catalog.ContextWindow(128000)},
	{ID: "gpt-4-turbo", DisplayName: "GPT-4 Turbo", Description: "GPT-4 with a large context window", ContextWindow: catalog.ContextWindow(128000)},
	{ID: "gpt-4", DisplayName: "GPT-4", Description: "Original GPT-4", ContextWindow: catalog.ContextWindow(8192)},
	{ID: "gpt-3.5-turbo", DisplayName: "GPT-3.5 Turbo", Description: "Legacy fast chat model", ContextWindow: catalog.ContextWindow(16385)},
}

// OpenAISource lists models from the OpenAI API. Placeholder keys are never
// sent upstream.
type OpenAISource struct {
	baseURL string
	client  *http.Client
}

// NewOpenAISource creates the OpenAI source. An empty baseURL uses the public API.
func NewOpenAISource(baseURL string, client *http.Client) *OpenAISource {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	return &OpenAISource{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (s *OpenAISource) Name() string        { return openAIName }
func (s *OpenAISource) DisplayName() string { return "OpenAI" }

func (s *OpenAISource) ShouldFetch(apiKey string) bool {
	return catalog.IsUsableKey(apiKey)
}

// FetchModels lists models, keeps ids containing "gpt" and orders them by id
// descending so date-coded ids come newest first.
func (s *OpenAISource) FetchModels(ctx context.Context, apiKey string) ([]catalog.ModelDescriptor, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = s.baseURL
	if s.client != nil {
		cfg.HTTPClient = s.client
	}

	list, err := openai.NewClientWithConfig(cfg).ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai list models: %w", err)
	}

	known := make(map[string]catalog.ModelDescriptor, len(openAIDefaults))
	for _, m := range openAIDefaults {
		known[m.ID] = m
	}

	out := make([]catalog.ModelDescriptor, 0, len(list.Models))
	for _, m := range list.Models {
		if !strings.Contains(m.ID, openAIModelFilter) {
			continue
		}
		if d, ok := known[m.ID]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, catalog.ModelDescriptor{ID: m.ID, DisplayName: catalog.HumanizeID(m.ID)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *OpenAISource) Defaults() []catalog.ModelDescriptor {
	return openAIDefaults
}
