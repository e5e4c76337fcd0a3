package writers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"golang.org/x/sync/errgroup"
)

// S3Target is a bucket plus key prefix, parsed from s3://bucket/prefix.
type S3Target struct {
	Bucket string
	Prefix string
}

// ParseS3URL parses an s3://bucket[/prefix] location.
func ParseS3URL(raw string) (S3Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return S3Target{}, err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return S3Target{}, fmt.Errorf("not an s3://bucket[/prefix] URL: %q", raw)
	}
	return S3Target{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// Key returns the object key for a local file name.
func (t S3Target) Key(name string) string {
	if t.Prefix == "" {
		return name
	}
	return path.Join(t.Prefix, name)
}

func (t S3Target) String() string { return "s3://" + t.Bucket + "/" + t.Prefix }

// S3Options configures the session. Empty credentials fall back to the
// SDK's default chain (environment, shared config, instance role).
type S3Options struct {
	Region    string
	AccessKey string
	SecretKey string
}

// Uploader copies finished artifacts to S3.
type Uploader struct {
	api    s3manageriface.UploaderAPI
	target S3Target
	limit  int
}

// NewS3Uploader creates a session for opts and an uploader for target.
func NewS3Uploader(target S3Target, opts S3Options) (*Uploader, error) {
	cfg := &aws.Config{}
	if opts.Region != "" {
		cfg.Region = aws.String(opts.Region)
	}
	if opts.AccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewUploader(s3manager.NewUploader(sess), target), nil
}

// NewUploader wraps an existing upload API.
func NewUploader(api s3manageriface.UploaderAPI, target S3Target) *Uploader {
	return &Uploader{api: api, target: target, limit: 4}
}

// Upload sends each file under the target prefix, keyed by base name, and
// returns the object URLs in input order.
func (u *Uploader) Upload(ctx context.Context, files []string) ([]string, error) {
	if u == nil || u.api == nil {
		return nil, errors.New("s3: uploader not configured")
	}
	locs := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.limit)
	for i, fn := range files {
		i, fn := i, fn
		g.Go(func() error {
			fh, err := os.Open(fn)
			if err != nil {
				return err
			}
			defer fh.Close()
			key := u.target.Key(filepath.Base(fn))
			if _, err := u.api.UploadWithContext(gctx, &s3manager.UploadInput{
				Bucket: aws.String(u.target.Bucket),
				Key:    aws.String(key),
				Body:   fh,
			}); err != nil {
				return fmt.Errorf("s3 upload %s: %w", key, err)
			}
			locs[i] = "s3://" + u.target.Bucket + "/" + key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return locs, nil
}
