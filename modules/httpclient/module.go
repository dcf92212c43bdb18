package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/configo/internal/ctxlog"
	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ClientInput defines the arguments for http.Client.
type ClientInput struct {
	Timeout             string `cfg:"timeout"`
	MaxIdleConns        int    `cfg:"max_idle_conns"`
	MaxIdleConnsPerHost int    `cfg:"max_idle_conns_per_host"`
}

// NewClient returns a live *http.Client. Unset pool sizes get the usual
// defaults and an empty timeout means none.
func NewClient(ctx context.Context, in *ClientInput) (*http.Client, error) {
	var timeout time.Duration
	if in.Timeout != "" {
		d, err := time.ParseDuration(in.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		timeout = d
	}
	if in.MaxIdleConns == 0 {
		in.MaxIdleConns = 100
	}
	if in.MaxIdleConnsPerHost == 0 {
		in.MaxIdleConnsPerHost = 10
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        in.MaxIdleConns,
			MaxIdleConnsPerHost: in.MaxIdleConnsPerHost,
			IdleConnTimeout:     90 * time.Second,
		},
	}, nil
}

// RequestInput defines the arguments for http.request. Client is usually a
// nested http.Client node built through self_build.
type RequestInput struct {
	Client  *http.Client      `cfg:"client"`
	URL     string            `cfg:"url"`
	Method  string            `cfg:"method"`
	Headers map[string]string `cfg:"headers"`
	Body    string            `cfg:"body"`
}

// Response is the result of http.request.
type Response struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// Do performs the request and reads the whole response body.
func Do(ctx context.Context, in *RequestInput) (*Response, error) {
	if in.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if in.Method == "" {
		in.Method = http.MethodGet
	}
	client := in.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := ctxlog.FromContext(ctx).With("method", in.Method, "url", in.URL)
	logger.Debug("Making HTTP request.")

	var body io.Reader
	if in.Body != "" {
		body = strings.NewReader(in.Body)
	}
	req, err := http.NewRequestWithContext(ctx, in.Method, in.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Debug("Received HTTP response.", "status", resp.Status)
	return &Response{StatusCode: resp.StatusCode, Body: string(raw)}, nil
}

var (
	clientFn  = node.MustCallable(NewClient, node.WithName("http.Client"))
	requestFn = node.MustCallable(Do, node.WithName("http.request"))
)

// Register registers the callables under the "http" module path.
func (m *Module) Register(r *registry.Registry) error {
	return r.RegisterEach(
		registry.Symbol{Ref: "http.Client", Callable: clientFn},
		registry.Symbol{Ref: "http.request", Callable: requestFn},
	)
}
