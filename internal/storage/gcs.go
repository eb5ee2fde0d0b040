package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSPublisher uploads artifacts to a Google Cloud Storage bucket.
type GCSPublisher struct {
	client *storage.Client
	target Target
}

// NewGCSPublisher creates a GCSPublisher. A service account key file is used
// when configured, otherwise application default credentials.
func NewGCSPublisher(ctx context.Context, t Target, creds Credentials) (*GCSPublisher, error) {
	var opts []option.ClientOption
	if creds.GCSKeyFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, creds.GCSKeyFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSPublisher{client: client, target: t}, nil
}

// Location implements Publisher.
func (p *GCSPublisher) Location(key string) string {
	return fmt.Sprintf("gs://%s/%s", p.target.Bucket, p.target.Key(key))
}

// Put implements Publisher.
func (p *GCSPublisher) Put(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close() //nolint:errcheck

	w := p.client.Bucket(p.target.Bucket).Object(p.target.Key(key)).NewWriter(ctx)
	w.ContentType = contentType(localPath)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", p.Location(key), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", p.Location(key), err)
	}
	return nil
}

// Close releases the underlying client.
func (p *GCSPublisher) Close() error {
	return p.client.Close()
}
