package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultUploadConcurrency bounds concurrent uploads in PublishAll.
const DefaultUploadConcurrency = 4

// PublishAll uploads files under their base names. The first failure
// cancels the remaining uploads. It returns the published locations in the
// order of files.
func PublishAll(ctx context.Context, p Publisher, files []string, logger *slog.Logger) ([]string, error) {
	locations := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultUploadConcurrency)
	for i, f := range files {
		key := filepath.Base(f)
		g.Go(func() error {
			if err := p.Put(gctx, key, f); err != nil {
				return err
			}
			locations[i] = p.Location(key)
			logger.Info("artifact published", "file", f, "location", locations[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return locations, nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".jsonl":
		return "application/x-ndjson"
	case ".csv":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	default:
		return "application/octet-stream"
	}
}
