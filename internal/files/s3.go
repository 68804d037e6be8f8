package files

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures the S3 resolver.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
	URLTTL          time.Duration
}

// S3Resolver presigns GET URLs for objects keyed by location.
type S3Resolver struct {
	bucket    string
	ttl       time.Duration
	presigner *s3.PresignClient
}

// NewS3Resolver loads AWS configuration and returns a presigning resolver.
// Static credentials are used when both keys are set; otherwise the default
// credential chain applies.
func NewS3Resolver(ctx context.Context, opts S3Options) (*S3Resolver, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})
	return newS3Resolver(client, opts.Bucket, opts.URLTTL), nil
}

func newS3Resolver(client *s3.Client, bucket string, ttl time.Duration) *S3Resolver {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &S3Resolver{
		bucket:    bucket,
		ttl:       ttl,
		presigner: s3.NewPresignClient(client),
	}
}

// Resolve returns a presigned GET URL valid for the configured TTL.
func (r *S3Resolver) Resolve(ctx context.Context, location string) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(strings.TrimPrefix(location, "/")),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("s3: presign %q: %w", location, err)
	}
	return req.URL, nil
}
