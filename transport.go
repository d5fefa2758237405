// FILE: lixenwraith/logship/transport.go
package logship

import (
	"bytes"
	"context"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fasthttp"
)

// IngestRequest is one batch POST to the ingestion endpoint
type IngestRequest struct {
	URL       string
	APIKey    string
	Service   string
	Namespace string
	Body      []byte // JSON array of records
	Gzip      bool
}

// IngestResponse carries the fully read endpoint reply
type IngestResponse struct {
	StatusCode int
	Status     string
	Body       []byte
}

// OK reports a 2xx status
func (r *IngestResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport delivers a batch and returns the endpoint reply.
// An error means the request did not complete at the transport level.
type Transport interface {
	Send(ctx context.Context, req *IngestRequest) (*IngestResponse, error)
}

// FastHTTPTransport sends batches with a shared fasthttp client
type FastHTTPTransport struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewFastHTTPTransport creates a transport with the given default timeout.
// A deadline on the Send context takes precedence over the default.
func NewFastHTTPTransport(timeout time.Duration) *FastHTTPTransport {
	if timeout <= 0 {
		timeout = DefaultRequestTimeoutMs * time.Millisecond
	}
	return &FastHTTPTransport{
		client: &fasthttp.Client{
			Name:                "logship",
			MaxIdleConnDuration: 30 * time.Second,
		},
		timeout: timeout,
	}
}

// Send posts the batch and reads the response body to completion
func (t *FastHTTPTransport) Send(ctx context.Context, in *IngestRequest) (*IngestResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(in.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentTypeJSON)
	req.Header.Set(headerAPIKey, in.APIKey)
	req.Header.Set(headerService, in.Service)
	req.Header.Set(headerNamespace, in.Namespace)

	body := in.Body
	if in.Gzip {
		compressed, err := gzipBody(body)
		if err != nil {
			return nil, fmtErrorf("failed to compress batch: %w", err)
		}
		body = compressed
		req.Header.Set(fasthttp.HeaderContentEncoding, "gzip")
	}
	req.SetBodyRaw(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(t.timeout)
	}
	if err := t.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	// The body is only valid until the response is released
	code := resp.StatusCode()
	return &IngestResponse{
		StatusCode: code,
		Status:     fasthttp.StatusMessage(code),
		Body:       append([]byte(nil), resp.Body()...),
	}, nil
}

// gzipBody compresses a request payload
func gzipBody(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
