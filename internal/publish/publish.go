// Package publish writes rendered documents to a local file or an S3
// bucket.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/lumen/internal/errors"
)

// DefaultContentType is used when Options.ContentType is empty.
const DefaultContentType = "text/html; charset=utf-8"

// ObjectPutter is the part of *s3.Client used for publishing.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures Publish.
type Options struct {
	// Region and Endpoint configure the S3 client created when Client is
	// nil. A non-empty Endpoint selects path-style addressing, as needed by
	// S3-compatible stores.
	Region   string
	Endpoint string

	ContentType string

	// Client overrides the S3 client.
	Client ObjectPutter
}

// Target is a parsed destination.
type Target struct {
	// Path is set for file destinations.
	Path string

	// Bucket and Key are set for s3:// destinations.
	Bucket string
	Key    string
}

// IsS3 reports whether t names an S3 object.
func (t Target) IsS3() bool { return t.Bucket != "" }

func (t Target) String() string {
	if t.IsS3() {
		return "s3://" + t.Bucket + "/" + t.Key
	}
	return t.Path
}

// ParseTarget parses "s3://bucket/key", "file:///path" or a plain path.
// An S3 key ending in "/" gets "index.html" appended.
func ParseTarget(dest string) (Target, error) {
	if dest == "" {
		return Target{}, errors.New("L040").WithHint("a destination is required")
	}
	if !strings.Contains(dest, "://") {
		return Target{Path: filepath.Clean(dest)}, nil
	}
	u, err := url.Parse(dest)
	if err != nil {
		return Target{}, errors.New("L040").Wrap(err)
	}
	switch u.Scheme {
	case "file":
		return Target{Path: filepath.Clean(u.Path)}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" {
			return Target{}, errors.New("L040").WithHint("s3 destination needs a bucket: s3://bucket/key")
		}
		if key == "" || strings.HasSuffix(key, "/") {
			key += "index.html"
		}
		return Target{Bucket: u.Host, Key: key}, nil
	default:
		return Target{}, errors.New("L040").WithHint(fmt.Sprintf("unsupported destination scheme %q", u.Scheme))
	}
}

// Publish writes data to dest and returns the written location.
func Publish(ctx context.Context, dest string, data []byte, opts Options) (string, error) {
	target, err := ParseTarget(dest)
	if err != nil {
		return "", err
	}
	if target.IsS3() {
		err = putObject(ctx, target, data, opts)
	} else {
		err = writeFile(target.Path, data)
	}
	if err != nil {
		return "", errors.New("L030").WithDetail(target.String()).Wrap(err)
	}
	return target.String(), nil
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".lumen-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func putObject(ctx context.Context, target Target, data []byte, opts Options) error {
	client := opts.Client
	if client == nil {
		c, err := NewS3Client(ctx, opts.Region, opts.Endpoint)
		if err != nil {
			return err
		}
		client = c
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(target.Bucket),
		Key:           aws.String(target.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("no-cache"),
	})
	return err
}

// NewS3Client creates a client from the default AWS configuration chain:
// environment, shared config and credentials files, SSO, web identity and
// instance roles. A non-empty endpoint selects path-style addressing.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("publish: load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
