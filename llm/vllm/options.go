package vllm

import "net/http"

const (
	defaultBaseURL = "http://localhost:8000/v1"
	defaultModel   = "tuned_adapter"

	// vLLM does not check credentials by default, but the OpenAI wire format
	// requires a bearer token to be present.
	defaultToken = "EMPTY"
)

type options struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
}

// Option is a function that configures the client.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		baseURL: defaultBaseURL,
		model:   defaultModel,
		token:   defaultToken,
	}
}

// WithBaseURL sets the base URL of the vLLM server, including the /v1 prefix.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithModel sets the default model (adapter) identifier.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithToken sets the bearer token sent to the server.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}
