package persistence

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pricetrack/internal/domain/entity"
	"pricetrack/pkg/logx"
)

const s3UploadTimeout = 2 * time.Minute

type S3Options struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	CacheControl    string
}

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads the artifact next to the chart's static files.
type S3Publisher struct {
	api  S3API
	opts S3Options
}

func NewS3Publisher(ctx context.Context, opts S3Options) (*S3Publisher, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("config.LoadDefaultConfig: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}

		o.UsePathStyle = opts.PathStyle
	})

	return NewS3PublisherWithAPI(client, opts), nil
}

func NewS3PublisherWithAPI(api S3API, opts S3Options) *S3Publisher {
	return &S3Publisher{api: api, opts: opts}
}

func (p *S3Publisher) Write(ctx context.Context, doc entity.Document) error {
	b, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.opts.Bucket),
		Key:         aws.String(p.opts.Key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	}

	if p.opts.CacheControl != "" {
		input.CacheControl = aws.String(p.opts.CacheControl)
	}

	ctx, cancel := context.WithTimeout(ctx, s3UploadTimeout)
	defer cancel()

	if _, err := p.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3.PutObject: %w", err)
	}

	logger(ctx).Info("series published",
		logx.FieldURL, fmt.Sprintf("s3://%s/%s", p.opts.Bucket, p.opts.Key),
		logx.FieldCount, len(doc.Series),
	)

	return nil
}
