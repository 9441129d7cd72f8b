package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Request describes a single outbound call. Body is sent as-is when non-empty.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations must be safe for concurrent use.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Do(ctx context.Context, req *Request) (Response, error)
}
