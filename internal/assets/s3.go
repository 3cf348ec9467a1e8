package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// ErrS3Config reports an incomplete S3 configuration.
var ErrS3Config = errors.New("incomplete s3 config")

// S3Options configures an S3 store. A non-empty Endpoint selects an
// S3-compatible service and implies path-style addressing.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	CustomDomain    string
	Prefix          string

	// MaxAttempts bounds SDK retries; zero keeps the SDK default.
	MaxAttempts int
}

// S3 stores uploads as objects in a bucket.
type S3 struct {
	client     *s3.Client
	bucket     string
	prefix     string
	publicBase string
}

var _ types.AssetStore = (*S3)(nil)

// NewS3 builds an S3 store with static credentials.
func NewS3(opts S3Options) (*S3, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	region := strings.TrimSpace(opts.Region)
	accessKey := strings.TrimSpace(opts.AccessKeyID)
	secretKey := strings.TrimSpace(opts.SecretAccessKey)
	if bucket == "" || region == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("%w: bucket, region, access_key_id and secret_access_key are required", ErrS3Config)
	}

	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	pathStyle := opts.PathStyle || endpoint != ""

	cfg := aws.Config{
		Region:                     region,
		Credentials:                credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = pathStyle
		if opts.MaxAttempts > 0 {
			o.RetryMaxAttempts = opts.MaxAttempts
		}
	})

	var publicBase string
	switch {
	case opts.CustomDomain != "":
		publicBase = strings.TrimRight(strings.TrimSpace(opts.CustomDomain), "/")
		if !strings.Contains(publicBase, "://") {
			publicBase = "https://" + publicBase
		}
	case endpoint != "":
		publicBase = endpoint + "/" + bucket
	case pathStyle:
		publicBase = fmt.Sprintf("https://s3.%s.amazonaws.com/%s", region, bucket)
	default:
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3{
		client:     client,
		bucket:     bucket,
		prefix:     strings.Trim(opts.Prefix, "/"),
		publicBase: publicBase,
	}, nil
}

// Upload puts the file at <prefix>/<folder>/<id><ext>.
func (s *S3) Upload(ctx context.Context, file types.File, folder string) (types.Asset, error) {
	key, id := objectKey(s.prefix, folder, file)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentLength: aws.Int64(file.Size()),
		ContentType:   aws.String(file.ContentType()),
	})
	if err != nil {
		return types.Asset{}, fmt.Errorf("s3 put %s: %w", key, err)
	}

	w, h := dimensions(file)
	return types.Asset{
		URL:     s.publicBase + "/" + escapeKey(key),
		Width:   w,
		Height:  h,
		AssetID: id,
	}, nil
}
