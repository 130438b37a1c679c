package origin

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// FunctionURLHandler adapts h to Lambda function URL invocations.
func FunctionURLHandler(h http.Handler) func(context.Context, events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	return func(ctx context.Context, ev events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
		req, err := newRequest(ctx, ev)
		if err != nil {
			return events.LambdaFunctionURLResponse{}, err
		}

		rw := newResponseBuffer()
		h.ServeHTTP(rw, req)
		return rw.toEvent(), nil
	}
}

func newRequest(ctx context.Context, ev events.LambdaFunctionURLRequest) (*http.Request, error) {
	method := ev.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}
	rawPath := ev.RawPath
	if rawPath == "" {
		rawPath = "/"
	}

	u := &url.URL{RawQuery: ev.RawQueryString}
	p, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid path %q", rawPath)
	}
	u.Path = p
	u.RawPath = rawPath

	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		if body, err = base64.StdEncoding.DecodeString(ev.Body); err != nil {
			return nil, errors.Wrap(err, "decoding request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}
	if host := ev.RequestContext.DomainName; host != "" {
		req.Host = host
	}
	return req, nil
}

// responseBuffer collects a handler's response for the Lambda runtime.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	b.WriteHeader(http.StatusOK)
	return b.body.Write(p)
}

func (b *responseBuffer) toEvent() events.LambdaFunctionURLResponse {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}

	headers := make(map[string]string, len(b.header))
	for k, v := range b.header {
		headers[k] = strings.Join(v, ",")
	}

	resp := events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers:    headers,
	}
	if isTextual(b.header.Get("Content-Type")) {
		resp.Body = b.body.String()
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(b.body.Bytes())
		resp.IsBase64Encoded = true
	}
	return resp
}

func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/javascript", "application/xml", "image/svg+xml", "application/manifest+json":
		return true
	}
	return false
}
