package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options S3-compatible bucket (Cloudflare R2 or any S3 endpoint)
type Options struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	BaseURL   string
}

// Enabled reports whether a bucket is configured
func (o Options) Enabled() bool {
	return o.Bucket != ""
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Client uploads spreadsheets to the archive bucket
type R2Client struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewR2Client builds the S3 client for the configured endpoint
func NewR2Client(ctx context.Context, opts Options) (*R2Client, error) {
	if !opts.Enabled() {
		return nil, errors.New("storage bucket not configured")
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.AccessKey,
				opts.SecretKey,
				"",
			),
		),
		config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					if service == s3.ServiceID && opts.Endpoint != "" {
						return aws.Endpoint{
							URL:           opts.Endpoint,
							SigningRegion: "auto",
						}, nil
					}
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				},
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	return newR2Client(s3.NewFromConfig(cfg), opts), nil
}

func newR2Client(client putObjectAPI, opts Options) *R2Client {
	return &R2Client{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// Upload stores body under key and returns its public URL
func (r *R2Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if r.baseURL == "" {
		return fmt.Sprintf("s3://%s/%s", r.bucket, key), nil
	}
	return fmt.Sprintf("%s/%s", r.baseURL, key), nil
}
