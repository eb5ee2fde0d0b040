package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Publisher uploads artifacts to an S3-compatible bucket.
type S3Publisher struct {
	client *s3.Client
	target Target
}

// NewS3Publisher creates an S3Publisher with static credentials.
// Path-style addressing (needed by Hetzner and MinIO) is used unless
// S3URLStyle is "vhost".
func NewS3Publisher(t Target, creds Credentials) (*S3Publisher, error) {
	if creds.S3KeyID == "" || creds.S3Secret == "" {
		return nil, fmt.Errorf("S3 config is incomplete: key id and secret are required")
	}
	region := creds.S3Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			creds.S3KeyID, creds.S3Secret, "",
		),
		UsePathStyle: creds.S3URLStyle != "vhost",
	}
	if creds.S3Endpoint != "" {
		endpoint := creds.S3Endpoint
		if !strings.Contains(endpoint, "://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}

	return &S3Publisher{client: s3.New(opts), target: t}, nil
}

// Location implements Publisher.
func (p *S3Publisher) Location(key string) string {
	return fmt.Sprintf("s3://%s/%s", p.target.Bucket, p.target.Key(key))
}

// Put implements Publisher.
func (p *S3Publisher) Put(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close() //nolint:errcheck

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.target.Bucket),
		Key:         aws.String(p.target.Key(key)),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", p.Location(key), err)
	}
	return nil
}
