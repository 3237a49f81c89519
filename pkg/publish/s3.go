// s3.go — Upload a run to S3-compatible object storage.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/xob0t/covercraft/pkg/generator"
	"github.com/xob0t/covercraft/pkg/pipeline"
)

// S3Options configures an S3Publisher.
type S3Options struct {
	Endpoint  string // e.g. https://s3.example.com; empty uses AWS
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string // optional CDN base for returned URLs
	Prefix    string // key prefix, default "covers"
	PublicACL bool
}

// S3Publisher uploads every artifact of a run, plus its manifest, under
// <Prefix>/<run_id>/.
type S3Publisher struct {
	client *s3.Client
	opts   S3Options
}

// NewS3Publisher creates a publisher with static credentials and path-style
// addressing. It returns (nil, nil) when no bucket or credentials are set.
func NewS3Publisher(opts S3Options) (*S3Publisher, error) {
	if opts.Bucket == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, nil
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if opts.Prefix == "" {
		opts.Prefix = "covers"
	}
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")

	s3opts := s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	}
	if opts.Endpoint != "" {
		s3opts.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return &S3Publisher{client: s3.New(s3opts), opts: opts}, nil
}

// Key returns the object key for a file of run.
func (p *S3Publisher) Key(runID, file string) string {
	return path.Join(p.opts.Prefix, runID, filepath.Base(file))
}

// URL returns the public URL of key.
func (p *S3Publisher) URL(key string) string {
	switch {
	case p.opts.PublicURL != "":
		return p.opts.PublicURL + "/" + key
	case p.opts.Endpoint != "":
		return p.opts.Endpoint + "/" + p.opts.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.opts.Bucket, p.opts.Region, key)
}

// Publish implements Publisher. Uploads stop at the first failure.
func (p *S3Publisher) Publish(ctx context.Context, m *pipeline.Manifest) ([]string, error) {
	files := append(m.Paths(), filepath.Join(m.Dir, pipeline.ManifestFile))
	var out []string
	for _, f := range files {
		key := p.Key(m.RunID, f)
		if err := p.upload(ctx, key, f); err != nil {
			return out, err
		}
		out = append(out, p.URL(key))
	}
	return out, nil
}

func (p *S3Publisher) upload(ctx context.Context, key, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", file, err)
	}
	contentType := "application/json"
	if f, err := generator.FormatOf(file); err == nil {
		contentType = f.ContentType()
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if p.opts.PublicACL {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}
	if _, err := p.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", p.opts.Bucket, key, err)
	}
	return nil
}
