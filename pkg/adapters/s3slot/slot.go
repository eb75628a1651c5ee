// Package s3slot keeps the snapshot as one object in an S3-compatible bucket
// (AWS S3 or MinIO).
package s3slot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/aretw0/htmlrms/pkg/core"
)

// ObjectAPI is the subset of the S3 client the slot needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds explicit construction parameters. Credentials come from the
// default AWS chain (environment, shared config, instance role).
type Config struct {
	Bucket    string
	Prefix    string // optional key prefix, e.g. "team-a/"
	Region    string // default us-east-1
	Endpoint  string // optional; set for MinIO or other compatible stores
	PathStyle bool
}

// ParseURI reads "s3://bucket/optional/prefix" into a Config.
func ParseURI(uri string) (Config, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Config{}, fmt.Errorf("invalid s3 uri: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return Config{}, fmt.Errorf("invalid s3 uri %q: want s3://bucket/prefix", uri)
	}
	prefix := strings.TrimPrefix(u.Path, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return Config{Bucket: u.Host, Prefix: prefix}, nil
}

// Slot implements core.Slot with one object.
type Slot struct {
	client ObjectAPI
	bucket string
	key    string
}

// New builds an S3 client from cfg and returns the slot for name.
func New(ctx context.Context, cfg Config, name string) (*Slot, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix+name+".json"), nil
}

// NewWithClient wraps an existing client (tests, custom middleware).
func NewWithClient(client ObjectAPI, bucket, key string) *Slot {
	return &Slot{client: client, bucket: bucket, key: key}
}

// Key returns the object key backing the slot.
func (s *Slot) Key() string {
	return s.key
}

// Read implements core.Slot.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if isNotFound(err) {
		return nil, core.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return data, nil
}

// Write implements core.Slot. A PutObject replaces the object atomically.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &s.key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	}
	if reason := core.ChangeReason(ctx); reason != "" {
		input.Metadata = map[string]string{"change-reason": reason}
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// ComponentType implements introspection.Component.
func (s *Slot) ComponentType() string {
	return "s3-slot"
}
