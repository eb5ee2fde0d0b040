// Package graphload writes a KGX graph into Neo4j.
package graphload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config configures the Neo4j connection. An empty URI disables loading.
type Config struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// Enabled reports whether a Neo4j URI is configured.
func (c Config) Enabled() bool { return c.URI != "" }

// Client wraps a Neo4j driver bound to one database.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewClient connects to Neo4j and verifies connectivity.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("neo4j: URI is not configured")
	}
	if cfg.User == "" {
		cfg.User = "neo4j"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 50
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Client{
		driver:   driver,
		database: cfg.Database,
		logger:   logger.With("component", "neo4j"),
	}, nil
}

// Close releases the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}

func (c *Client) session(ctx context.Context) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
}

// EnsureSchema creates the node id uniqueness constraint. Failures are
// logged and ignored since older servers lack IF NOT EXISTS.
func (c *Client) EnsureSchema(ctx context.Context) {
	session := c.session(ctx)
	defer session.Close(ctx) //nolint:errcheck

	res, err := session.Run(ctx, constraintCypher, nil)
	if err == nil {
		_, err = res.Consume(ctx)
	}
	if err != nil {
		c.logger.Warn("neo4j schema init failed (continuing)", "error", err)
	}
}

// WriteBatch runs cypher once with $rows bound to rows in a write transaction.
func (c *Client) WriteBatch(ctx context.Context, cypher string, rows []map[string]any) error {
	session := c.session(ctx)
	defer session.Close(ctx) //nolint:errcheck

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}
