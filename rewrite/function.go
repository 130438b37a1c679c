package rewrite

import (
	"bytes"
	"text/template"
)

// FunctionRuntime is the CloudFront Functions runtime FunctionSource targets.
const FunctionRuntime = "cloudfront-js-2.0"

var functionTmpl = template.Must(template.New("fixuri").Parse(`var idPattern = new RegExp({{printf "%q" .IDPattern}}, "g");
var dynamicRoutePattern = new RegExp({{printf "%q" .DynamicRoutePattern}});
var extensionlessPattern = new RegExp({{printf "%q" .ExtensionlessPattern}});

function fixURI(uri) {
  uri = uri.replace(idPattern, {{printf "%q" .IDPlaceholder}});
  if (dynamicRoutePattern.test(uri)) {
    return {{printf "%q" .DynamicRoutePage}};
  }
  if (extensionlessPattern.test(uri)) {
    return uri + {{printf "%q" .HTMLSuffix}};
  }
  if (uri.endsWith("/") && uri !== "/") {
    return uri + {{printf "%q" .IndexSuffix}};
  }
  return uri;
}

function handler(event) {
  var request = event.request;
  request.uri = fixURI(request.uri);
  return request;
}
`))

// FunctionSource renders Normalize as a CloudFront Functions viewer-request
// handler. The JavaScript is built from the same patterns the Go code
// compiles.
func FunctionSource() string {
	var buf bytes.Buffer
	err := functionTmpl.Execute(&buf, struct {
		IDPattern            string
		DynamicRoutePattern  string
		ExtensionlessPattern string
		IDPlaceholder        string
		DynamicRoutePage     string
		HTMLSuffix           string
		IndexSuffix          string
	}{
		IDPattern:            IDPattern,
		DynamicRoutePattern:  DynamicRoutePattern,
		ExtensionlessPattern: ExtensionlessPattern,
		IDPlaceholder:        IDPlaceholder,
		DynamicRoutePage:     DynamicRoutePage,
		HTMLSuffix:           htmlSuffix,
		IndexSuffix:          indexSuffix,
	})
	if err != nil {
		// the template and its inputs are constant
		panic(err)
	}
	return buf.String()
}
