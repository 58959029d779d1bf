package blob

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3Config struct {
	Region          string
	Bucket          string
	Key             string
	AccessKeyID     string
	SecretAccessKey string
}

type S3Fetcher struct {
	client *s3.S3
	bucket string
	key    string
}

func NewS3Fetcher(cfg S3Config) (*S3Fetcher, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return &S3Fetcher{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		key:    cfg.Key,
	}, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, dst io.Writer) error {
	out, err := f.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key),
	})
	if err != nil {
		return err
	}
	defer out.Body.Close()

	_, err = io.Copy(dst, out.Body)
	return err
}
