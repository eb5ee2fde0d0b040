package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    Target
		wantErr bool
	}{
		{name: "plain_dir", uri: "/data/out/", want: Target{Scheme: "file", Prefix: "/data/out"}},
		{name: "file_uri", uri: "file:///data/out", want: Target{Scheme: "file", Prefix: "/data/out"}},
		{name: "s3_prefix", uri: "s3://kg-artifacts/golden/2026/", want: Target{Scheme: "s3", Bucket: "kg-artifacts", Prefix: "golden/2026"}},
		{name: "s3_bucket_only", uri: "s3://kg-artifacts", want: Target{Scheme: "s3", Bucket: "kg-artifacts"}},
		{name: "gcs", uri: "gs://kg/golden", want: Target{Scheme: "gs", Bucket: "kg", Prefix: "golden"}},
		{name: "az", uri: "az://graphs/golden", want: Target{Scheme: "az", Bucket: "graphs", Prefix: "golden"}},
		{
			name: "abfss",
			uri:  "abfss://graphs@acct.dfs.core.windows.net/golden/v1",
			want: Target{Scheme: "az", Bucket: "graphs", Prefix: "golden/v1"},
		},
		{
			name: "azure_https",
			uri:  "https://acct.blob.core.windows.net/graphs/golden",
			want: Target{Scheme: "az", Bucket: "graphs", Prefix: "golden"},
		},
		{name: "empty", uri: "", wantErr: true},
		{name: "s3_no_bucket", uri: "s3:///prefix", wantErr: true},
		{name: "unknown_scheme", uri: "ftp://host/dir", wantErr: true},
		{name: "foreign_https", uri: "https://example.com/graphs", wantErr: true},
		{name: "abfss_no_container", uri: "abfss://acct.dfs.core.windows.net/x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTarget_Key(t *testing.T) {
	assert.Equal(t, "nodes.tsv", Target{}.Key("nodes.tsv"))
	assert.Equal(t, "golden/nodes.tsv", Target{Prefix: "golden"}.Key("nodes.tsv"))
}

func writeArtifact(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLocalPublisher_Put(t *testing.T) {
	src := writeArtifact(t, t.TempDir(), "nodes.tsv", "id:ID\nDOID:1\n")
	root := filepath.Join(t.TempDir(), "published")
	p := NewLocalPublisher(root)

	require.NoError(t, p.Put(context.Background(), "golden/nodes.tsv", src))
	data, err := os.ReadFile(filepath.Join(root, "golden", "nodes.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "id:ID\nDOID:1\n", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "golden"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	err = p.Put(context.Background(), "x", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestNewPublisher(t *testing.T) {
	ctx := context.Background()

	p, err := NewPublisher(ctx, t.TempDir(), Credentials{})
	require.NoError(t, err)
	assert.IsType(t, &LocalPublisher{}, p)

	p, err = NewPublisher(ctx, "s3://bucket/prefix", Credentials{S3KeyID: "k", S3Secret: "s", S3Endpoint: "fsn1.your-objectstorage.com"})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/prefix/nodes.tsv", p.Location("nodes.tsv"))

	_, err = NewPublisher(ctx, "s3://bucket", Credentials{})
	require.Error(t, err)

	_, err = NewPublisher(ctx, "az://graphs", Credentials{AzureAccountName: "acct"})
	require.Error(t, err)
}

func TestS3Publisher_Put(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, b
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	p, err := NewS3Publisher(Target{Scheme: "s3", Bucket: "kg", Prefix: "golden"}, Credentials{
		S3Endpoint: srv.URL, S3Region: "eu-central", S3KeyID: "key", S3Secret: "secret",
	})
	require.NoError(t, err)

	src := writeArtifact(t, t.TempDir(), "edges.tsv", "subject:START_ID\n")
	require.NoError(t, p.Put(context.Background(), "edges.tsv", src))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/kg/golden/edges.tsv", path)
	assert.Contains(t, string(body), "subject:START_ID")
}

type failingPublisher struct {
	*LocalPublisher
	failKey string
}

func (f failingPublisher) Put(ctx context.Context, key, localPath string) error {
	if key == f.failKey {
		return errors.New("quota exceeded")
	}
	return f.LocalPublisher.Put(ctx, key, localPath)
}

func TestPublishAll(t *testing.T) {
	srcDir := t.TempDir()
	files := []string{
		writeArtifact(t, srcDir, "golden_nodes.tsv", "n"),
		writeArtifact(t, srcDir, "golden_edges.tsv", "e"),
		writeArtifact(t, srcDir, "golden_metadata.json", "{}"),
	}
	logger := slog.New(slog.DiscardHandler)

	t.Run("all_published", func(t *testing.T) {
		root := t.TempDir()
		locs, err := PublishAll(context.Background(), NewLocalPublisher(root), files, logger)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "golden_nodes.tsv"),
			filepath.Join(root, "golden_edges.tsv"),
			filepath.Join(root, "golden_metadata.json"),
		}, locs)
	})

	t.Run("failure_propagates", func(t *testing.T) {
		p := failingPublisher{LocalPublisher: NewLocalPublisher(t.TempDir()), failKey: "golden_edges.tsv"}
		_, err := PublishAll(context.Background(), p, files, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/tab-separated-values", contentType("a.TSV"))
	assert.Equal(t, "application/x-ndjson", contentType("a.jsonl"))
	assert.Equal(t, "application/octet-stream", contentType("a.bin"))
}
