package media

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/juju/errors"

	"github.com/dev-dhg/tgbot/pkg/config"
)

// ObjectGetter is the part of the S3 API the resolver needs.
type ObjectGetter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from cfg. Credentials come from the
// standard AWS environment variables and shared config. A custom endpoint
// switches to path-style addressing for S3 compatible stores.
func NewS3Client(cfg config.S3Config) (ObjectGetter, error) {
	awsCfg := &aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Annotate(err, "creating aws session")
	}
	return s3.New(sess), nil
}

func getObject(ctx context.Context, client ObjectGetter, bucket, key string) ([]byte, string, error) {
	out, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", errors.Annotatef(err, "fetching s3://%s/%s", bucket, key)
	}
	data, err := readAll(out.Body)
	if err != nil {
		return nil, "", errors.Annotatef(err, "reading s3://%s/%s", bucket, key)
	}
	return data, aws.StringValue(out.ContentType), nil
}
