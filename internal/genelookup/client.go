// Package genelookup resolves Entrez gene ids to HGNC symbols through the
// MyGene.info batch query API.
//
// A lookup is a single logical batch per run. Any failure degrades every
// requested id to its ENTREZ:<id> placeholder rather than aborting the run.
package genelookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/identifier"
)

// Defaults for the public MyGene.info service.
const (
	DefaultURL       = "https://mygene.info/v3/query"
	DefaultTimeout   = 30 * time.Second
	DefaultBatchSize = 1000
)

// Config configures a Client.
type Config struct {
	URL     string
	Timeout time.Duration // hard ceiling for the whole batch
	// RequestsPerSecond throttles the chunked POSTs; 0 means unlimited.
	RequestsPerSecond float64
	BatchSize         int
}

// Client queries MyGene.info.
type Client struct {
	url        string
	timeout    time.Duration
	batchSize  int
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. Zero config fields take their defaults.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		url:        cfg.URL,
		timeout:    cfg.Timeout,
		batchSize:  cfg.BatchSize,
		limiter:    limiter,
		httpClient: &http.Client{},
		logger:     logger.With("component", "genelookup"),
	}
}

// hit is one element of the MyGene.info batch response.
type hit struct {
	Query    string `json:"query"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	NotFound bool   `json:"notfound"`
}

// Symbols returns a symbol for every id in ids. Ids without a symbol, and
// every id when the lookup fails, map to ENTREZ:<id>.
func (c *Client) Symbols(ctx context.Context, ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out
	}

	found, err := c.lookup(ctx, ids)
	if err != nil {
		c.logger.Warn("gene symbol lookup failed, using placeholders", "ids", len(ids), "error", err)
		found = nil
	}

	missing := 0
	for _, id := range ids {
		if sym := found[id]; sym != "" {
			out[id] = sym
			continue
		}
		out[id] = identifier.EntrezFallback(id)
		missing++
	}
	c.logger.Info("gene symbols resolved", "requested", len(ids), "placeholders", missing)
	return out
}

// lookup performs the chunked POSTs under one deadline.
func (c *Client) lookup(ctx context.Context, ids []string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	found := make(map[string]string, len(ids))
	for start := 0; start < len(ids); start += c.batchSize {
		end := min(start+c.batchSize, len(ids))
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		hits, err := c.post(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, h := range hits {
			if h.NotFound || h.Symbol == "" {
				continue
			}
			if _, dup := found[h.Query]; !dup {
				found[h.Query] = h.Symbol
			}
		}
	}
	return found, nil
}

func (c *Client) post(ctx context.Context, ids []string) ([]hit, error) {
	form := url.Values{}
	form.Set("q", strings.Join(ids, ","))
	form.Set("scopes", "entrezgene")
	form.Set("fields", "symbol,name")
	form.Set("species", "human")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("post %s: status %d: %s", c.url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var hits []hit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return hits, nil
}
