// Package sanctions checks identifiers against the CEIS public sanctions
// dataset. The checker fails open: an unavailable source must never block a
// KYC run, only degrade it (logged and metered).
package sanctions

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"peerlend.backend/pkg/cpf"
	"peerlend.backend/pkg/logger"
	"peerlend.backend/pkg/metrics"
	"peerlend.backend/pkg/redis"
)

const (
	// identifierColumn is the CSV column holding the sanctioned party's
	// CPF or CNPJ, as published by the Portal da Transparência.
	identifierColumn = "CPF OU CNPJ DO SANCIONADO"

	cacheKey = "sanctions:ceis:csv"
)

var (
	cacheGet = redis.Get
	cacheSet = redis.Set
)

// Config holds the external data source settings
type Config struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration // zero disables the Redis dataset cache
}

// CEISChecker queries the CEIS restrictive list
type CEISChecker struct {
	cfg     Config
	client  *http.Client
	metrics *metrics.Metrics
}

// NewCEISChecker creates a checker with a request timeout; the source itself
// has none, so the client enforces one.
func NewCEISChecker(cfg Config, m *metrics.Metrics) *CEISChecker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CEISChecker{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// IsRestricted reports whether the identifier appears on the sanctions list.
// Matching is exact on the normalized digits (the published dataset formats
// identifiers inconsistently, and substring matching invites collisions).
// Any failure degrades to "not restricted".
func (c *CEISChecker) IsRestricted(ctx context.Context, identifier string) bool {
	body, err := c.fetchDataset(ctx)
	if err != nil {
		logger.Error(ctx, "sanctions lookup degraded to not-restricted", zap.Error(err))
		c.metrics.IncrementSanctionsDegraded()
		return false
	}

	restricted, err := datasetContains(body, identifier)
	if err != nil {
		logger.Error(ctx, "sanctions dataset unusable, degraded to not-restricted", zap.Error(err))
		c.metrics.IncrementSanctionsDegraded()
		return false
	}

	if restricted {
		logger.Warn(ctx, "identifier found on CEIS restrictive list",
			zap.String("identifier", cpf.Format(identifier)))
	}
	return restricted
}

// Refresh re-fetches the dataset and warms the cache. Used by the background
// refresh job.
func (c *CEISChecker) Refresh(ctx context.Context) error {
	body, err := c.download(ctx)
	if err != nil {
		return err
	}
	c.storeCache(ctx, body)
	return nil
}

func (c *CEISChecker) fetchDataset(ctx context.Context) (string, error) {
	body, err := c.download(ctx)
	if err == nil {
		c.storeCache(ctx, body)
		return body, nil
	}

	if c.cfg.CacheTTL > 0 {
		if cached, cacheErr := cacheGet(ctx, cacheKey); cacheErr == nil && cached != "" {
			logger.Warn(ctx, "sanctions source unavailable, serving cached dataset", zap.Error(err))
			return cached, nil
		}
	}
	return "", err
}

func (c *CEISChecker) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build sanctions request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sanctions fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sanctions source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read sanctions payload: %w", err)
	}
	return string(body), nil
}

func (c *CEISChecker) storeCache(ctx context.Context, body string) {
	if c.cfg.CacheTTL <= 0 {
		return
	}
	if err := cacheSet(ctx, cacheKey, body, c.cfg.CacheTTL); err != nil {
		logger.Warn(ctx, "failed to cache sanctions dataset", zap.Error(err))
	}
}

// datasetContains parses the semicolon-delimited CSV and looks for an exact
// normalized-identifier match in the sanctioned-party column.
func datasetContains(body, identifier string) (bool, error) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return false, fmt.Errorf("failed to read sanctions header: %w", err)
	}

	column := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), identifierColumn) {
			column = i
			break
		}
	}
	if column < 0 {
		return false, fmt.Errorf("column %q not found in sanctions dataset", identifierColumn)
	}

	target := cpf.Normalize(identifier)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, fmt.Errorf("failed to read sanctions record: %w", err)
		}
		if column >= len(record) {
			continue
		}
		if cpf.Normalize(record[column]) == target {
			return true, nil
		}
	}
	return false, nil
}
