package providers

import (
	"context"
	"fmt"
	"net/http"
)

// Authenticator prepares credentials for an outbound provider request.
type Authenticator interface {
	Authenticate(ctx context.Context) (AuthContext, error)
}

// AuthContext applies authentication to a concrete request.
type AuthContext interface {
	ApplyToRequest(ctx context.Context, req any) error
}

// SimpleAPIKeyAuth implements API key authentication (OpenAI-style)
type SimpleAPIKeyAuth struct {
	apiKey     string
	headerName string // e.g., "Authorization"
	prefix     string // e.g., "Bearer "
}

// NewSimpleAPIKeyAuth creates a header authenticator. An empty header name
// means "Authorization" with a "Bearer " prefix.
func NewSimpleAPIKeyAuth(apiKey, headerName, prefix string) *SimpleAPIKeyAuth {
	if headerName == "" {
		headerName = "Authorization"
		if prefix == "" {
			prefix = "Bearer "
		}
	}

	return &SimpleAPIKeyAuth{
		apiKey:     apiKey,
		headerName: headerName,
		prefix:     prefix,
	}
}

// Authenticate returns an auth context with the API key
func (a *SimpleAPIKeyAuth) Authenticate(ctx context.Context) (AuthContext, error) {
	if a.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &simpleAPIKeyAuthContext{
		value:      a.prefix + a.apiKey,
		headerName: a.headerName,
	}, nil
}

type simpleAPIKeyAuthContext struct {
	value      string
	headerName string
}

// ApplyToRequest adds the API key header to an *http.Request.
func (c *simpleAPIKeyAuthContext) ApplyToRequest(ctx context.Context, req any) error {
	httpReq, ok := req.(*http.Request)
	if !ok {
		return fmt.Errorf("expected *http.Request, got %T", req)
	}

	httpReq.Header.Set(c.headerName, c.value)
	return nil
}

// NoAuth leaves requests untouched; used by local providers without keys.
type NoAuth struct{}

func (NoAuth) Authenticate(context.Context) (AuthContext, error) {
	return noAuthContext{}, nil
}

type noAuthContext struct{}

func (noAuthContext) ApplyToRequest(context.Context, any) error { return nil }
