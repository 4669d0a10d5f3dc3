package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"modelcatalog/internal/catalog"
)

const (
	deepSeekName           = "deepseek"
	deepSeekDefaultBaseURL = "https://api.deepseek.com"
)

var deepSeekDefaults = []catalog.ModelDescriptor{
	{ID: "deepseek-chat", DisplayName: "DeepSeek Chat", Description: "General chat model", ContextWindow: catalog.ContextWindow(64000)},
	{ID: "deepseek-reasoner", DisplayName: "DeepSeek Reasoner", Description: "Reasoning model", ContextWindow: catalog.ContextWindow(64000)},
}

// DeepSeekSource lists models from the DeepSeek API.
type DeepSeekSource struct {
	client *resty.Client
}

// NewDeepSeekSource creates the DeepSeek source. An empty baseURL uses the public API.
func NewDeepSeekSource(baseURL string, httpClient *http.Client) *DeepSeekSource {
	if baseURL == "" {
		baseURL = deepSeekDefaultBaseURL
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultFetchTimeout}
	}

	client := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &DeepSeekSource{client: client}
}

func (s *DeepSeekSource) Name() string        { return deepSeekName }
func (s *DeepSeekSource) DisplayName() string { return "DeepSeek" }

func (s *DeepSeekSource) ShouldFetch(apiKey string) bool {
	return catalog.HasKey(apiKey)
}

// FetchModels maps each data[].id to a descriptor in API order.
func (s *DeepSeekSource) FetchModels(ctx context.Context, apiKey string) ([]catalog.ModelDescriptor, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		Get("/models")
	if err != nil {
		return nil, fmt.Errorf("deepseek list models: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, newStatusError(deepSeekName, resp.StatusCode(), resp.Body())
	}

	return parseModelIDs(resp.Body(), "data")
}

func (s *DeepSeekSource) Defaults() []catalog.ModelDescriptor {
	return deepSeekDefaults
}

// parseModelIDs reads records under path and turns each id into a descriptor
// with a humanized display name.
func parseModelIDs(body []byte, path string) ([]catalog.ModelDescriptor, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	data := gjson.GetBytes(body, path)
	if !data.IsArray() {
		return nil, fmt.Errorf("%w: missing %q array", ErrMalformedResponse, path)
	}

	var out []catalog.ModelDescriptor
	data.ForEach(func(_, item gjson.Result) bool {
		id := strings.TrimSpace(item.Get("id").String())
		if id == "" {
			return true
		}
		out = append(out, catalog.ModelDescriptor{ID: id, DisplayName: catalog.HumanizeID(id)})
		return true
	})
	return out, nil
}
