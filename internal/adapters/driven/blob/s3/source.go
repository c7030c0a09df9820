// Package s3 opens bulk import files stored in S3 or an S3-compatible
// service such as MinIO.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
)

// Scheme prefixes object locations, e.g. s3://bucket/path/records.xml.
const Scheme = "s3://"

// Ensure Source implements the interface.
var _ driven.BlobSource = (*Source)(nil)

// Config holds construction parameters.
// Credentials come from the default AWS chain.
type Config struct {
	Region    string
	Endpoint  string // optional; set for MinIO and other S3-compatible services
	PathStyle bool
}

// Source reads objects addressed as s3://bucket/key.
type Source struct {
	client *s3.Client
}

// New creates a source from cfg. The region defaults to us-east-1.
// optFns are applied after cfg.
func New(ctx context.Context, cfg Config, optFns ...func(*s3.Options)) (*Source, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	opts := append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)
	client := s3.NewFromConfig(awsCfg, opts...)
	return &Source{client: client}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *s3.Client) *Source {
	return &Source{client: client}
}

// Open returns the body of the object at location. The caller closes it.
func (s *Source) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", location, err)
	}
	return out.Body, nil
}

// IsLocation reports whether path addresses an S3 object.
func IsLocation(path string) bool {
	return strings.HasPrefix(path, Scheme)
}

// ParseLocation splits s3://bucket/key into bucket and key.
func ParseLocation(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, Scheme)
	if !ok {
		return "", "", fmt.Errorf("location %q is not an %s url: %w", location, Scheme, domain.ErrInvalidInput)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("location %q needs a bucket and a key: %w", location, domain.ErrInvalidInput)
	}
	return bucket, key, nil
}
