package origin

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func functionURLRequest(method, rawPath string) events.LambdaFunctionURLRequest {
	return events.LambdaFunctionURLRequest{
		RawPath: rawPath,
		Headers: map[string]string{"accept": "text/html"},
		RequestContext: events.LambdaFunctionURLRequestContext{
			DomainName: "abc123.lambda-url.us-east-1.on.aws",
			HTTP: events.LambdaFunctionURLRequestContextHTTPDescription{
				Method: method,
				Path:   rawPath,
			},
		},
	}
}

func TestFunctionURLHandler(t *testing.T) {
	fn := FunctionURLHandler(NewHandler(NewDirStore(testExport()), DefaultConfig()))

	resp, err := fn(context.Background(), functionURLRequest(http.MethodGet, "/admin/access-rules/rul_29kaLgLmxb7b8rAcy4YuE9bROTx"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>rule</html>", resp.Body)
	assert.False(t, resp.IsBase64Encoded)
	assert.Equal(t, "text/html; charset=utf-8", resp.Headers["Content-Type"])
	assert.Equal(t, DefaultCacheControl, resp.Headers["Cache-Control"])
}

func TestFunctionURLHandlerBinary(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"
	store := &stubStore{objects: map[string]string{"logo.unknownext": png}}
	fn := FunctionURLHandler(NewHandler(store, DefaultConfig()))

	resp, err := fn(context.Background(), functionURLRequest(http.MethodGet, "/logo.unknownext"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.IsBase64Encoded)

	body, err := base64.StdEncoding.DecodeString(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, png, string(body))
}

func TestFunctionURLHandlerNotFound(t *testing.T) {
	fn := FunctionURLHandler(NewHandler(NewDirStore(testExport()), DefaultConfig()))

	resp, err := fn(context.Background(), functionURLRequest(http.MethodGet, "/nope"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "<html>not found</html>", resp.Body)
}

func TestFunctionURLHandlerDefaults(t *testing.T) {
	fn := FunctionURLHandler(NewHandler(NewDirStore(testExport()), DefaultConfig()))

	resp, err := fn(context.Background(), events.LambdaFunctionURLRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>home</html>", resp.Body)
}

func TestFunctionURLHandlerBadPath(t *testing.T) {
	fn := FunctionURLHandler(NewHandler(NewDirStore(testExport()), DefaultConfig()))

	_, err := fn(context.Background(), functionURLRequest(http.MethodGet, "/%zz"))
	assert.Error(t, err)
}

func TestIsTextual(t *testing.T) {
	assert.True(t, isTextual(""))
	assert.True(t, isTextual("text/html; charset=utf-8"))
	assert.True(t, isTextual("application/json"))
	assert.True(t, isTextual("image/svg+xml"))
	assert.False(t, isTextual("image/png"))
	assert.False(t, isTextual("font/woff2"))
}
