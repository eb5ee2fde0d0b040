// Package storage publishes pipeline artifacts to a local directory or an
// object store (S3-compatible, Google Cloud Storage, Azure Blob Storage).
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Publisher uploads one local file under a key relative to its target.
type Publisher interface {
	Put(ctx context.Context, key, localPath string) error
	// Location renders where key ends up, for logs and run summaries.
	Location(key string) string
}

// Credentials holds the object store settings. Only the block matching the
// target scheme is used.
type Credentials struct {
	S3Endpoint string // host[:port] or URL; empty uses the AWS default
	S3Region   string
	S3KeyID    string
	S3Secret   string
	// S3URLStyle is "path" (default) or "vhost".
	S3URLStyle string

	GCSKeyFile string // service account JSON; empty uses application default credentials

	AzureAccountName string
	AzureAccountKey  string
}

// Target is a parsed publish URI.
type Target struct {
	Scheme string // file, s3, gs, az
	Bucket string // bucket or container; empty for file
	Prefix string // key prefix, or the directory for file
}

// Key joins the target prefix and name with '/'.
func (t Target) Key(name string) string {
	if t.Prefix == "" {
		return name
	}
	return path.Join(t.Prefix, name)
}

// ParseTarget parses a publish URI.
//
// Supported formats:
//
//	/local/dir or file:///local/dir
//	s3://bucket/prefix
//	gs://bucket/prefix
//	az://container/prefix
//	abfss://container@account.dfs.core.windows.net/prefix
//	https://account.blob.core.windows.net/container/prefix
func ParseTarget(uri string) (Target, error) {
	if uri == "" {
		return Target{}, fmt.Errorf("empty publish target")
	}
	if !strings.Contains(uri, "://") {
		return Target{Scheme: "file", Prefix: filepath.Clean(uri)}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return Target{}, fmt.Errorf("parse publish target %q: %w", uri, err)
	}

	switch u.Scheme {
	case "file":
		if u.Path == "" {
			return Target{}, fmt.Errorf("empty path in %q", uri)
		}
		return Target{Scheme: "file", Prefix: filepath.Clean(u.Path)}, nil
	case "s3", "gs", "az":
		if u.Host == "" {
			return Target{}, fmt.Errorf("empty bucket in %q", uri)
		}
		return Target{Scheme: u.Scheme, Bucket: u.Host, Prefix: cleanPrefix(u.Path)}, nil
	case "abfss", "https":
		container, prefix, err := parseAzurePath(u, uri)
		if err != nil {
			return Target{}, err
		}
		return Target{Scheme: "az", Bucket: container, Prefix: prefix}, nil
	default:
		return Target{}, fmt.Errorf("unsupported publish scheme %q in %q", u.Scheme, uri)
	}
}

// parseAzurePath extracts container and prefix from an abfss:// or
// blob https:// URI.
func parseAzurePath(u *url.URL, raw string) (container, prefix string, err error) {
	switch u.Scheme {
	case "abfss":
		// Go's url.Parse treats "container" as userinfo (before @).
		if u.User == nil {
			return "", "", fmt.Errorf("abfss path %q missing container@account component", raw)
		}
		container = u.User.Username()
		prefix = cleanPrefix(u.Path)
	case "https":
		if !strings.Contains(u.Host, ".blob.core.windows.net") {
			return "", "", fmt.Errorf("unrecognized Azure HTTPS host %q in path %q", u.Host, raw)
		}
		parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
		container = parts[0]
		if len(parts) > 1 {
			prefix = cleanPrefix(parts[1])
		}
	}
	if container == "" {
		return "", "", fmt.Errorf("empty container in Azure path %q", raw)
	}
	return container, prefix, nil
}

func cleanPrefix(p string) string {
	return strings.Trim(p, "/")
}

// NewPublisher builds the Publisher for uri.
func NewPublisher(ctx context.Context, uri string, creds Credentials) (Publisher, error) {
	t, err := ParseTarget(uri)
	if err != nil {
		return nil, err
	}
	switch t.Scheme {
	case "file":
		return NewLocalPublisher(t.Prefix), nil
	case "s3":
		return NewS3Publisher(t, creds)
	case "gs":
		return NewGCSPublisher(ctx, t, creds)
	case "az":
		return NewAzurePublisher(t, creds)
	}
	return nil, fmt.Errorf("unsupported publish scheme %q", t.Scheme)
}
