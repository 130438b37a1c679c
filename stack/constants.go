package stack

const (
	// DefaultResourceTagKey is applied to every taggable resource in the stack.
	DefaultResourceTagKey = "Project"
	// DefaultResourceTagValue identifies resources owned by this stack.
	DefaultResourceTagValue = "approvals-web"

	// ParameterPrefix roots every SSM parameter written by the stack.
	ParameterPrefix = "/approvals-web"

	// ExportPrefix prefixes CloudFormation export names.
	ExportPrefix = "ApprovalsWeb"
)

// OriginMode selects how the distribution resolves request paths.
type OriginMode string

const (
	// OriginModeFunction serves the bucket directly and rewrites paths in a
	// CloudFront Function on viewer-request.
	OriginModeFunction OriginMode = "function"
	// OriginModeLambda serves the bucket through the origin Lambda.
	OriginModeLambda OriginMode = "lambda"
)

// ParseOriginMode validates s. The empty string selects OriginModeFunction.
func ParseOriginMode(s string) (OriginMode, bool) {
	switch OriginMode(s) {
	case "", OriginModeFunction:
		return OriginModeFunction, true
	case OriginModeLambda:
		return OriginModeLambda, true
	}
	return "", false
}
