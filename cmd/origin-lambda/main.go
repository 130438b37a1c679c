// Command origin-lambda serves the web console export from S3 behind a Lambda
// function URL, applying the same rewrites as the edge function.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	logging "github.com/ipfs/go-log/v2"

	"approvals-web/origin"
)

var log = logging.Logger("approvals-web/origin-lambda")

func main() {
	cfg, err := origin.ConfigFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lvl, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL %q: %s\n", cfg.LogLevel, err)
		os.Exit(1)
	}
	logging.SetAllLoggers(lvl)

	sess, err := session.NewSession(aws.NewConfig().WithRegion(cfg.Region))
	if err != nil {
		log.Fatalw("creating aws session", "error", err)
	}

	store := origin.NewS3Store(s3.New(sess), cfg.Bucket, cfg.KeyPrefix)
	log.Infow("starting origin", "bucket", cfg.Bucket, "prefix", cfg.KeyPrefix)

	lambda.Start(origin.FunctionURLHandler(origin.NewHandler(store, cfg)))
}
