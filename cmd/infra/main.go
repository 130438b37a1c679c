// Command infra synthesizes the web console frontend stack.
//
// Context keys (cdk.json or -c):
//
//	originMode          "function" (default) or "lambda"
//	originAssetPath     directory with the origin Lambda bootstrap binary
//	deployRepositories  GitHub repositories allowed to deploy, list or comma separated
//	environment         deployment name, defaults to "dev"
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/pkg/errors"

	"approvals-web/stack"
)

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)

	props, err := propsFromContext(app)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	props.StackProps = awscdk.StackProps{
		Env: env(),
		Tags: &map[string]*string{
			"managed_by":  jsii.String("cdk"),
			"environment": jsii.String(props.Environment),
		},
	}

	stackName := fmt.Sprintf("ApprovalsWeb-%s", props.Environment)
	stack.NewFrontendStack(app, stackName, props)

	app.Synth(nil)
}

func propsFromContext(scope constructs.Construct) (*stack.FrontendStackProps, error) {
	mode, ok := stack.ParseOriginMode(contextString(scope, "originMode"))
	if !ok {
		return nil, errors.Errorf("unknown originMode %q, want %q or %q", contextString(scope, "originMode"), stack.OriginModeFunction, stack.OriginModeLambda)
	}

	environment := contextString(scope, "environment")
	if environment == "" {
		environment = "dev"
	}

	return &stack.FrontendStackProps{
		OriginMode:         mode,
		OriginAssetPath:    contextString(scope, "originAssetPath"),
		DeployRepositories: contextStrings(scope, "deployRepositories"),
		Environment:        environment,
	}, nil
}

func contextString(scope constructs.Construct, key string) string {
	if v, ok := scope.Node().TryGetContext(jsii.String(key)).(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// contextStrings accepts a JSON list from cdk.json or a comma separated -c value.
func contextStrings(scope constructs.Construct, key string) []string {
	var out []string
	switch v := scope.Node().TryGetContext(jsii.String(key)).(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}

func env() *awscdk.Environment {
	account := os.Getenv("CDK_DEFAULT_ACCOUNT")
	region := os.Getenv("CDK_DEFAULT_REGION")
	if account == "" && region == "" {
		return nil
	}
	e := &awscdk.Environment{}
	if account != "" {
		e.Account = jsii.String(account)
	}
	if region != "" {
		e.Region = jsii.String(region)
	}
	return e
}
