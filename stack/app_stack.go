// Package stack provides the CDK stack hosting the web console export.
package stack

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"approvals-web/origin"
	"approvals-web/rewrite"
)

// FrontendStackProps defines the properties for the frontend stack.
type FrontendStackProps struct {
	awscdk.StackProps
	// OriginMode defaults to OriginModeFunction.
	OriginMode OriginMode
	// OriginAssetPath is the directory holding the origin Lambda's bootstrap
	// binary. Only used with OriginModeLambda.
	OriginAssetPath string
	// DeployRepositories are GitHub repositories ("owner/name") allowed to
	// assume the deploy role. No role is created when empty.
	DeployRepositories []string
	// Environment names the deployment, e.g. "dev" or "prod".
	Environment string
}

// FrontendStack hosts the static export behind CloudFront.
type FrontendStack struct {
	awscdk.Stack
	OriginMode                       OriginMode
	FrontendBucketName               string
	CloudFrontDistributionID         string
	CloudFrontDistributionDomainName string
	RewriteFunctionARN               *string
	OriginFunctionARN                *string
	DeployRoleARN                    *string
}

// Resources holds the common resources that are shared across different components
type Resources struct {
	Stack       awscdk.Stack
	Account     string
	Region      string
	Environment string
}

// FrontendResources holds S3 bucket and CloudFront distribution for frontend hosting
type FrontendResources struct {
	Bucket                 awss3.IBucket
	BucketName             string
	CloudFrontDistribution awscloudfront.IDistribution
	DistributionID         string
	DistributionDomainName string
	RewriteFunction        awscloudfront.IFunction
	OriginFunction         awslambda.IFunction
}

// NewFrontendStack creates a new CDK stack for the web console frontend.
func NewFrontendStack(scope constructs.Construct, id string, props *FrontendStackProps) *FrontendStack {
	if props == nil {
		props = &FrontendStackProps{}
	}
	mode, ok := ParseOriginMode(string(props.OriginMode))
	if !ok {
		panic(fmt.Sprintf("unknown origin mode %q", props.OriginMode))
	}

	stack := awscdk.NewStack(scope, &id, &props.StackProps)

	environment := props.Environment
	if environment == "" {
		environment = "dev"
	}

	resources := &Resources{
		Stack:       stack,
		Account:     *stack.Account(),
		Region:      *stack.Region(),
		Environment: environment,
	}

	frontend := createFrontendResources(resources, mode, props.OriginAssetPath)

	var deployRole awsiam.IRole
	if len(props.DeployRepositories) > 0 {
		deployRole = createDeployRole(resources, frontend, props.DeployRepositories)
	}

	createNonSecretParameters(resources, frontend, mode)

	awscdk.NewCfnOutput(resources.Stack, jsii.String("FrontendBucketName"), &awscdk.CfnOutputProps{
		Value:       jsii.String(frontend.BucketName),
		Description: jsii.String("S3 Bucket Name for Frontend Hosting"),
		ExportName:  jsii.String(exportName(resources, "Frontend-Bucket-Name")),
	})

	awscdk.NewCfnOutput(resources.Stack, jsii.String("CloudFrontDistributionID"), &awscdk.CfnOutputProps{
		Value:       jsii.String(frontend.DistributionID),
		Description: jsii.String("CloudFront Distribution ID for Frontend"),
		ExportName:  jsii.String(exportName(resources, "CloudFront-Distribution-ID")),
	})

	awscdk.NewCfnOutput(resources.Stack, jsii.String("CloudFrontDistributionDomainName"), &awscdk.CfnOutputProps{
		Value:       jsii.String(frontend.DistributionDomainName),
		Description: jsii.String("CloudFront Distribution Domain Name for Frontend"),
		ExportName:  jsii.String(exportName(resources, "CloudFront-Domain-Name")),
	})

	result := &FrontendStack{
		Stack:                            stack,
		OriginMode:                       mode,
		FrontendBucketName:               frontend.BucketName,
		CloudFrontDistributionID:         frontend.DistributionID,
		CloudFrontDistributionDomainName: frontend.DistributionDomainName,
	}
	if frontend.RewriteFunction != nil {
		result.RewriteFunctionARN = frontend.RewriteFunction.FunctionArn()
	}
	if frontend.OriginFunction != nil {
		result.OriginFunctionARN = frontend.OriginFunction.FunctionArn()
	}
	if deployRole != nil {
		result.DeployRoleARN = deployRole.RoleArn()
		awscdk.NewCfnOutput(resources.Stack, jsii.String("DeployRoleARN"), &awscdk.CfnOutputProps{
			Value:       deployRole.RoleArn(),
			Description: jsii.String("IAM Role assumed by CI to deploy the frontend"),
			ExportName:  jsii.String(exportName(resources, "Deploy-Role-ARN")),
		})
	}
	return result
}

// createFrontendResources creates S3 bucket and CloudFront distribution for the static export
func createFrontendResources(resources *Resources, mode OriginMode, originAssetPath string) *FrontendResources {
	frontendBucketName := fmt.Sprintf("approvals-web-%s-%s-%s", resources.Environment, resources.Account, resources.Region)
	frontendBucket := awss3.NewBucket(resources.Stack, jsii.String("FrontendBucket"), &awss3.BucketProps{
		BucketName:        jsii.String(frontendBucketName),
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		AutoDeleteObjects: jsii.Bool(true),
		// CloudFront reads through origin access control; no website hosting
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		ObjectOwnership:   awss3.ObjectOwnership_BUCKET_OWNER_ENFORCED,
		EnforceSSL:        jsii.Bool(true),
	})
	awscdk.Tags_Of(frontendBucket).Add(jsii.String(DefaultResourceTagKey), jsii.String(DefaultResourceTagValue), nil)

	behavior := &awscloudfront.BehaviorOptions{
		ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
		AllowedMethods:       awscloudfront.AllowedMethods_ALLOW_GET_HEAD(),
		CachedMethods:        awscloudfront.CachedMethods_CACHE_GET_HEAD(),
		Compress:             jsii.Bool(true),
	}

	frontend := &FrontendResources{
		Bucket:     frontendBucket,
		BucketName: frontendBucketName,
	}

	switch mode {
	case OriginModeLambda:
		frontend.OriginFunction = createOriginFunction(resources, frontendBucket, originAssetPath)
		// only CloudFront can invoke the URL, signing with SigV4 through the OAC
		functionURL := frontend.OriginFunction.AddFunctionUrl(&awslambda.FunctionUrlOptions{
			AuthType: awslambda.FunctionUrlAuthType_AWS_IAM,
		})
		behavior.Origin = awscloudfrontorigins.FunctionUrlOrigin_WithOriginAccessControl(functionURL, &awscloudfrontorigins.FunctionUrlOriginWithOACProps{
			OriginAccessControl: awscloudfront.NewFunctionUrlOriginAccessControl(resources.Stack, jsii.String("OriginFunctionAccessControl"), &awscloudfront.FunctionUrlOriginAccessControlProps{
				Description: jsii.String("Signs CloudFront requests to the origin function URL"),
			}),
		})
	default:
		frontend.RewriteFunction = createRewriteFunction(resources)
		behavior.Origin = awscloudfrontorigins.S3BucketOrigin_WithOriginAccessControl(frontendBucket, nil)
		behavior.FunctionAssociations = &[]*awscloudfront.FunctionAssociation{
			{
				Function:  frontend.RewriteFunction,
				EventType: awscloudfront.FunctionEventType_VIEWER_REQUEST,
			},
		}
	}

	notFoundPage := jsii.String("/" + origin.DefaultNotFoundKey)
	distribution := awscloudfront.NewDistribution(resources.Stack, jsii.String("FrontendDistribution"), &awscloudfront.DistributionProps{
		DefaultBehavior:   behavior,
		DefaultRootObject: jsii.String(origin.DefaultRootObject),
		// S3 answers 403 for missing keys when CloudFront cannot list the bucket
		ErrorResponses: &[]*awscloudfront.ErrorResponse{
			{
				HttpStatus:         jsii.Number(403),
				ResponseHttpStatus: jsii.Number(404),
				ResponsePagePath:   notFoundPage,
				Ttl:                awscdk.Duration_Minutes(jsii.Number(5)),
			},
			{
				HttpStatus:         jsii.Number(404),
				ResponseHttpStatus: jsii.Number(404),
				ResponsePagePath:   notFoundPage,
				Ttl:                awscdk.Duration_Minutes(jsii.Number(5)),
			},
		},
		Comment:    jsii.String(fmt.Sprintf("Approvals web console (%s)", resources.Environment)),
		EnableIpv6: jsii.Bool(true),
		PriceClass: awscloudfront.PriceClass_PRICE_CLASS_100,
	})
	awscdk.Tags_Of(distribution).Add(jsii.String(DefaultResourceTagKey), jsii.String(DefaultResourceTagValue), nil)

	// Apply removal policies for clean deletion
	frontendBucket.ApplyRemovalPolicy(awscdk.RemovalPolicy_DESTROY)
	distribution.ApplyRemovalPolicy(awscdk.RemovalPolicy_DESTROY)

	frontend.CloudFrontDistribution = distribution
	frontend.DistributionID = *distribution.DistributionId()
	frontend.DistributionDomainName = *distribution.DistributionDomainName()

	fmt.Printf("Frontend origin mode: %s\n", mode)
	return frontend
}

// createRewriteFunction creates the viewer-request CloudFront Function mapping paths to export files
func createRewriteFunction(resources *Resources) awscloudfront.IFunction {
	fn := awscloudfront.NewFunction(resources.Stack, jsii.String("RewriteFunction"), &awscloudfront.FunctionProps{
		Code:    awscloudfront.FunctionCode_FromInline(jsii.String(rewrite.FunctionSource())),
		Runtime: awscloudfront.FunctionRuntime_JS_2_0(),
		Comment: jsii.String("Rewrites request paths to static export files"),
	})
	fn.ApplyRemovalPolicy(awscdk.RemovalPolicy_DESTROY)
	return fn
}

// createOriginFunction creates the Lambda serving the bucket with the same rewrites
func createOriginFunction(resources *Resources, bucket awss3.IBucket, assetPath string) awslambda.IFunction {
	if assetPath == "" {
		assetPath = filepath.Join(getThisFileDir(), "../bin/origin-lambda")
	}

	fn := awslambda.NewFunction(resources.Stack, jsii.String("OriginFunction"), &awslambda.FunctionProps{
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Handler:      jsii.String("bootstrap"),
		Code:         awslambda.Code_FromAsset(jsii.String(assetPath), nil),
		MemorySize:   jsii.Number(256),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(10)),
		Environment: &map[string]*string{
			"FRONTEND_BUCKET": bucket.BucketName(),
			"NOT_FOUND_KEY":   jsii.String(origin.DefaultNotFoundKey),
			"CACHE_CONTROL":   jsii.String(origin.DefaultCacheControl),
			"LOG_LEVEL":       jsii.String(origin.DefaultLogLevel),
			"GOLOG_LOG_FMT":   jsii.String("json"),
		},
		LoggingFormat: awslambda.LoggingFormat_JSON,
	})
	awscdk.Tags_Of(fn).Add(jsii.String(DefaultResourceTagKey), jsii.String(DefaultResourceTagValue), nil)

	bucket.GrantRead(fn, nil)
	fn.ApplyRemovalPolicy(awscdk.RemovalPolicy_DESTROY)

	fmt.Printf("Origin Lambda asset: %s\n", assetPath)
	return fn
}

// createDeployRole creates IAM role for GitHub Actions to upload the export and invalidate the cache
func createDeployRole(resources *Resources, frontend *FrontendResources, repositories []string) awsiam.IRole {
	subjects := make([]interface{}, 0, len(repositories))
	for _, repo := range repositories {
		subjects = append(subjects, fmt.Sprintf("repo:%s:*", repo))
	}

	role := awsiam.NewRole(resources.Stack, jsii.String("DeployRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewWebIdentityPrincipal(
			jsii.String(fmt.Sprintf("arn:aws:iam::%s:oidc-provider/token.actions.githubusercontent.com", resources.Account)),
			&map[string]interface{}{
				"StringEquals": map[string]interface{}{
					"token.actions.githubusercontent.com:aud": "sts.amazonaws.com",
				},
				"StringLike": map[string]interface{}{
					"token.actions.githubusercontent.com:sub": subjects,
				},
			},
		),
		InlinePolicies: &map[string]awsiam.PolicyDocument{
			"S3FrontendDeployPolicy": awsiam.NewPolicyDocument(&awsiam.PolicyDocumentProps{
				Statements: &[]awsiam.PolicyStatement{
					awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
						Actions: &[]*string{
							jsii.String("s3:GetObject"),
							jsii.String("s3:PutObject"),
							jsii.String("s3:DeleteObject"),
							jsii.String("s3:ListBucket"),
							jsii.String("s3:GetBucketLocation"),
						},
						Resources: &[]*string{
							frontend.Bucket.BucketArn(),
							jsii.String(fmt.Sprintf("%s/*", *frontend.Bucket.BucketArn())),
						},
					}),
				},
			}),
			"CloudFrontInvalidationPolicy": awsiam.NewPolicyDocument(&awsiam.PolicyDocumentProps{
				Statements: &[]awsiam.PolicyStatement{
					awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
						Actions: &[]*string{
							jsii.String("cloudfront:CreateInvalidation"),
							jsii.String("cloudfront:GetInvalidation"),
							jsii.String("cloudfront:ListInvalidations"),
						},
						Resources: &[]*string{
							jsii.String(fmt.Sprintf("arn:aws:cloudfront::%s:distribution/%s", resources.Account, frontend.DistributionID)),
						},
					}),
				},
			}),
			"ParameterStoreAccessPolicy": awsiam.NewPolicyDocument(&awsiam.PolicyDocumentProps{
				Statements: &[]awsiam.PolicyStatement{
					awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
						Actions: &[]*string{
							jsii.String("ssm:GetParameter"),
							jsii.String("ssm:GetParameters"),
							jsii.String("ssm:GetParametersByPath"),
						},
						Resources: &[]*string{
							jsii.String(fmt.Sprintf("arn:aws:ssm:%s:%s:parameter%s/%s/*", resources.Region, resources.Account, ParameterPrefix, resources.Environment)),
						},
					}),
				},
			}),
		},
	})
	awscdk.Tags_Of(role).Add(jsii.String(DefaultResourceTagKey), jsii.String(DefaultResourceTagValue), nil)

	// Apply removal policy for clean deletion
	role.ApplyRemovalPolicy(awscdk.RemovalPolicy_DESTROY)

	return role
}

// createNonSecretParameters stores deployment coordinates in Parameter Store
func createNonSecretParameters(resources *Resources, frontend *FrontendResources, mode OriginMode) {
	params := map[string]string{
		"frontend-bucket":            frontend.BucketName,
		"cloudfront-distribution-id": frontend.DistributionID,
		"cloudfront-domain":          fmt.Sprintf("https://%s", frontend.DistributionDomainName),
		"origin-mode":                string(mode),
		"aws-region":                 resources.Region,
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		paramName := fmt.Sprintf("%s/%s/deployment/%s", ParameterPrefix, resources.Environment, name)
		// Create a clean construct ID from the parameter name
		constructID := strings.ReplaceAll(name, "-", "")
		param := awsssm.NewStringParameter(resources.Stack, jsii.String(fmt.Sprintf("Param%s", constructID)), &awsssm.StringParameterProps{
			ParameterName: jsii.String(paramName),
			StringValue:   jsii.String(params[name]),
			Description:   jsii.String(fmt.Sprintf("Configuration parameter for %s", paramName)),
			Tier:          awsssm.ParameterTier_STANDARD,
		})
		awscdk.Tags_Of(param).Add(jsii.String(DefaultResourceTagKey), jsii.String(DefaultResourceTagValue), nil)
	}
}

func exportName(resources *Resources, name string) string {
	return fmt.Sprintf("%s-%s-%s", ExportPrefix, strings.ToUpper(resources.Environment[:1])+resources.Environment[1:], name)
}

func getThisFileDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("unable to get current file path")
	}
	return filepath.Dir(filename)
}
