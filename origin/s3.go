package origin

import (
	"context"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// S3Store serves objects from an S3 bucket holding the export.
type S3Store struct {
	client s3iface.S3API
	bucket string
	prefix string
}

// NewS3Store returns a Store reading bucket. Keys are joined under prefix
// when it is set.
func NewS3Store(client s3iface.S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Get fetches key from the bucket.
func (s *S3Store) Get(ctx context.Context, key string) (*Object, error) {
	fullKey := key
	if s.prefix != "" {
		fullKey = path.Join(s.prefix, key)
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isMissing(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get s3://%s/%s", s.bucket, fullKey)
	}

	return &Object{
		Body:          out.Body,
		ContentType:   aws.StringValue(out.ContentType),
		ContentLength: aws.Int64Value(out.ContentLength),
		ETag:          aws.StringValue(out.ETag),
		LastModified:  aws.TimeValue(out.LastModified),
	}, nil
}

// isMissing reports whether err means the key does not exist. Without
// s3:ListBucket, S3 answers AccessDenied for missing keys.
func isMissing(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound", "AccessDenied":
		return true
	}
	return false
}
