package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"photo-portfolio/pkg/config"
)

// s3API is the part of *s3.Client used here
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Bucket talks to an S3 compatible bucket such as Cloudflare R2
type S3Bucket struct {
	client s3API
	bucket string
}

// NewS3Bucket creates a client for the R2 endpoint of the configured account
func NewS3Bucket(ctx context.Context, cfg *config.Config) (*S3Bucket, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("loading S3 config: %w", err)
	}

	endpoint := cfg.R2Endpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Printf("Using bucket %s at %s", cfg.BucketName, endpoint)
	return &S3Bucket{client: client, bucket: cfg.BucketName}, nil
}

// List returns a single page of a delimiter listing
func (b *S3Bucket) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
	}
	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	if opts.Delimiter != "" {
		input.Delimiter = aws.String(opts.Delimiter)
	}
	if opts.ContinuationToken != "" {
		input.ContinuationToken = aws.String(opts.ContinuationToken)
	}
	if opts.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(opts.MaxKeys))
	}

	output, err := b.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("ListObjectsV2(%q): %w", opts.Prefix, err)
	}

	page := &ListPage{}
	for _, obj := range output.Contents {
		if obj.Key == nil {
			continue
		}
		page.Objects = append(page.Objects, Object{
			Key:  aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		})
	}
	for _, prefix := range output.CommonPrefixes {
		if prefix.Prefix == nil {
			continue
		}
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(prefix.Prefix))
	}
	if aws.ToBool(output.IsTruncated) {
		page.NextContinuationToken = aws.ToString(output.NextContinuationToken)
	}

	return page, nil
}

// Put writes a whole object in a single request
func (b *S3Bucket) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("PutObject(%q): %w", key, err)
	}
	return nil
}

// Close is a no-op, the S3 client holds no connections of its own
func (b *S3Bucket) Close() error {
	return nil
}
