// Package rewrite maps request paths of the approvals web console onto the
// pre-rendered files of its static export.
//
// The export contains one HTML file per page. Client-side routes carrying a
// resource identifier share a single "[id]" page, directories are served by
// their index.html, and extensionless paths resolve to "<path>.html".
package rewrite

import (
	"regexp"
	"strings"
)

const (
	// IDPattern matches an opaque resource identifier such as
	// rul_29kaLgLmxb7b8rAcy4YuE9bROTx.
	IDPattern = `\w{3}_\w{27}`

	// DynamicRoutePattern matches the single UUID-keyed dynamic route.
	DynamicRoutePattern = `/subpath/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

	// ExtensionlessPattern matches a path whose final segment has no dot and
	// no trailing slash.
	ExtensionlessPattern = `/[^/.]+$`

	// IDPlaceholder replaces identifiers, mirroring the export's file names.
	IDPlaceholder = "[id]"

	// DynamicRoutePage is returned for every dynamic route match.
	DynamicRoutePage = "/subpath/[id].html"

	htmlSuffix  = ".html"
	indexSuffix = "index.html"
)

var (
	idRe            = regexp.MustCompile(IDPattern)
	dynamicRouteRe  = regexp.MustCompile(DynamicRoutePattern)
	extensionlessRe = regexp.MustCompile(ExtensionlessPattern)
)

// Rule identifies which rewrite produced a Result.
type Rule int

const (
	// RuleUnchanged leaves the path as it is (after identifier substitution).
	RuleUnchanged Rule = iota
	// RuleDynamicRoute maps to DynamicRoutePage.
	RuleDynamicRoute
	// RuleExtensionless appends ".html".
	RuleExtensionless
	// RuleDirectoryIndex appends "index.html".
	RuleDirectoryIndex
)

func (r Rule) String() string {
	switch r {
	case RuleUnchanged:
		return "unchanged"
	case RuleDynamicRoute:
		return "dynamic-route"
	case RuleExtensionless:
		return "extensionless"
	case RuleDirectoryIndex:
		return "directory-index"
	default:
		return "unknown"
	}
}

// Result is the outcome of Rewrite.
type Result struct {
	Path          string
	Rule          Rule
	IDSubstituted bool
}

// Normalize returns the static file path that serves the request path p.
// It never fails; input is not validated.
func Normalize(p string) string {
	return Rewrite(p).Path
}

// Rewrite is Normalize, also reporting which rule applied.
func Rewrite(p string) Result {
	substituted := idRe.ReplaceAllLiteralString(p, IDPlaceholder)
	res := Result{IDSubstituted: substituted != p}

	switch {
	case dynamicRouteRe.MatchString(substituted):
		res.Path = DynamicRoutePage
		res.Rule = RuleDynamicRoute
	case extensionlessRe.MatchString(substituted):
		res.Path = substituted + htmlSuffix
		res.Rule = RuleExtensionless
	case strings.HasSuffix(substituted, "/") && substituted != "/":
		res.Path = substituted + indexSuffix
		res.Rule = RuleDirectoryIndex
	default:
		res.Path = substituted
		res.Rule = RuleUnchanged
	}
	return res
}
