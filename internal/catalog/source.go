package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"storefront-service/internal/domain"
)

// Source delivers raw catalog records.
type Source interface {
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]domain.RawRecord, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	return f(ctx)
}

// StaticSource serves a fixed in-memory list.
type StaticSource struct {
	records []domain.RawRecord
}

var _ Source = (*StaticSource)(nil)

func NewStaticSource(records []domain.RawRecord) *StaticSource {
	return &StaticSource{records: records}
}

func (s *StaticSource) Fetch(_ context.Context) ([]domain.RawRecord, error) {
	out := make([]domain.RawRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Format describes the body shape of a remote catalog.
type Format string

const (
	// FormatEnvelope is the REST API shape {"success": true, "products": [...]}.
	FormatEnvelope Format = "envelope"
	// FormatArray is the spreadsheet-backed API shape: a bare array of records.
	FormatArray Format = "array"
)

const maxCatalogBytes = 8 << 20

// HTTPSourceConfig configures HTTPSource. RetryMax is the number of retries
// after the first attempt; a zero Timeout keeps the client default.
type HTTPSourceConfig struct {
	URL      string
	Format   Format
	Timeout  time.Duration
	RetryMax int
	Logger   *zap.Logger
}

// HTTPSource fetches the catalog from a REST or spreadsheet-backed endpoint.
type HTTPSource struct {
	url    string
	format Format
	client *retryablehttp.Client
}

var _ Source = (*HTTPSource)(nil)

func NewHTTPSource(cfg HTTPSourceConfig) (*HTTPSource, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("catalog: source URL is required")
	}
	format := cfg.Format
	if format == "" {
		format = FormatEnvelope
	}
	if format != FormatEnvelope && format != FormatArray {
		return nil, fmt.Errorf("catalog: unknown source format %q", format)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	client.Logger = NewRetryLogger(cfg.Logger)

	return &HTTPSource{url: cfg.URL, format: format, client: client}, nil
}

type envelope struct {
	Success  *bool              `json:"success"`
	Error    string             `json:"error"`
	Products []domain.RawRecord `json:"products"`
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	const op = "catalog.HTTPSource.Fetch"

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, domain.NewFetch(op, fmt.Errorf("build catalog request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewFetch(op, fmt.Errorf("request catalog: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, domain.NewFetch(op, fmt.Errorf("read catalog response: %w", err))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, domain.NewFetch(op, fmt.Errorf("catalog request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if s.format == FormatArray {
		var records []domain.RawRecord
		if err := dec.Decode(&records); err != nil {
			return nil, domain.NewFetch(op, fmt.Errorf("decode catalog array: %w", err))
		}
		return records, nil
	}

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, domain.NewFetch(op, fmt.Errorf("decode catalog envelope: %w", err))
	}
	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = "success=false"
		}
		return nil, domain.NewFetch(op, fmt.Errorf("catalog source reported failure: %s", msg))
	}
	return env.Products, nil
}

// RetryLogger routes retryablehttp's leveled logging into zap.
type RetryLogger struct {
	s *zap.SugaredLogger
}

var _ retryablehttp.LeveledLogger = (*RetryLogger)(nil)

func NewRetryLogger(logger *zap.Logger) *RetryLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryLogger{s: logger.Sugar()}
}

func (l *RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
func (l *RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}
func (l *RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}
func (l *RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}
