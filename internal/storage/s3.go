package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/corveoperu/cuervo-blanco-web/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
)

// S3Store uploads to a public bucket. Calls go through a circuit breaker so
// a broken object store fails checkout fast instead of hanging every upload.
type S3Store struct {
	client  *s3.Client
	bucket  string
	region  string
	breaker *gobreaker.CircuitBreaker[string]
}

func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func NewS3Store(client *s3.Client, bucket, region string) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		region:  region,
		breaker: circuitbreaker.New[string]("s3-uploads"),
	}
}

func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	url, err := s.breaker.Execute(func() (string, error) {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        body,
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("put object %q: %w", key, err)
		}
		return s.PublicURL(key), nil
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

func (s *S3Store) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
