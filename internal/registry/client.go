package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	logpkg "github.com/benvon/begone/internal/logger"
	"github.com/benvon/begone/internal/phone"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the data.gouv.fr tabular API
	DefaultBaseURL = "https://tabular-api.data.gouv.fr/api/resources"
	// DefaultResourceID is the ARCEP numbering-ranges dataset
	DefaultResourceID = "90e8bdd0-0f5c-47ac-bd39-5f46463eb806"
	// DefaultMnemonicField is the column holding the operator mnemonic
	DefaultMnemonicField = "Mnémo"
	// DefaultTimeout bounds each page request
	DefaultTimeout = 10 * time.Second

	// maxErrorBodyLength caps how much of an error response ends up in StatusError
	maxErrorBodyLength = 512
)

// ErrMalformedResponse indicates a response body that is not a data page
var ErrMalformedResponse = errors.New("malformed registry response")

// Row is one numbering range returned by the registry
type Row struct {
	First string `json:"Tranche_Debut"`
	Last  string `json:"Tranche_Fin"`
}

// page is the JSON envelope of one registry response
type page struct {
	Data  *[]Row `json:"data"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
}

// Options configures a Client
type Options struct {
	BaseURL           string
	ResourceID        string
	MnemonicField     string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables client-side spacing
	HTTPClient        *http.Client
}

// Client fetches numbering ranges from the registry, one page at a time
type Client struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewClient creates a registry client, filling unset options with defaults
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ResourceID == "" {
		opts.ResourceID = DefaultResourceID
	}
	if opts.MnemonicField == "" {
		opts.MnemonicField = DefaultMnemonicField
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := int(math.Max(1, math.Ceil(opts.RequestsPerSecond)))

	return &Client{
		opts:    opts,
		client:  httpClient,
		limiter: rate.NewLimiter(limit, burst),
		tracer:  otel.Tracer("github.com/benvon/begone/internal/registry"),
		logger:  logger,
	}
}

// URL returns the first page URL for a mnemonic
func (c *Client) URL(mnemonic string) string {
	q := url.Values{}
	q.Set(c.opts.MnemonicField+"__exact", mnemonic)
	return fmt.Sprintf("%s/%s/data/?%s", strings.TrimRight(c.opts.BaseURL, "/"), url.PathEscape(c.opts.ResourceID), q.Encode())
}

// FetchRanges returns one formatted pattern per range assigned to the
// mnemonic, sorted lexicographically.
func (c *Client) FetchRanges(ctx context.Context, mnemonic string) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "registry.FetchRanges",
		trace.WithAttributes(attribute.String("registry.mnemonic", mnemonic)),
	)
	defer span.End()

	var patterns []string
	for row, err := range c.Rows(ctx, mnemonic) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch failed")
			return nil, fmt.Errorf("fetch ranges for %s: %w", mnemonic, err)
		}
		pattern, err := phone.RangePattern(row.First, row.Last)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid range")
			return nil, fmt.Errorf("fetch ranges for %s: %w", mnemonic, err)
		}
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	span.SetAttributes(attribute.Int("registry.patterns", len(patterns)))
	c.logger.Debug("fetched_number_ranges",
		zap.String("mnemonic", logpkg.SanitizeString(mnemonic, 0)),
		zap.Int("patterns", len(patterns)),
	)
	return patterns, nil
}

// Rows iterates over every range row for the mnemonic, following
// links.next until it is null or absent. Iteration stops at the first error,
// which is yielded with a zero Row.
func (c *Client) Rows(ctx context.Context, mnemonic string) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		next := c.URL(mnemonic)
		seen := make(map[string]bool)
		for pageNum := 1; next != ""; pageNum++ {
			if seen[next] {
				yield(Row{}, fmt.Errorf("%w: pagination loops back to %s", ErrMalformedResponse, next))
				return
			}
			seen[next] = true

			p, err := c.fetchPage(ctx, next)
			if err != nil {
				yield(Row{}, err)
				return
			}
			c.logger.Debug("fetched_registry_page",
				zap.String("url", logpkg.SanitizeURL(next)),
				zap.Int("page", pageNum),
				zap.Int("rows", len(*p.Data)),
			)
			for _, row := range *p.Data {
				if !yield(row, nil) {
					return
				}
			}

			current := next
			next = ""
			if p.Links.Next != nil && *p.Links.Next != "" {
				next, err = resolve(current, *p.Links.Next)
				if err != nil {
					yield(Row{}, err)
					return
				}
			}
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed_to_close_response_body", zap.String("error", logpkg.SanitizeError(err)))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return nil, &StatusError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if p.Data == nil {
		return nil, fmt.Errorf("%w: missing data field", ErrMalformedResponse)
	}
	return &p, nil
}

// resolve turns a possibly relative next link into an absolute URL
func resolve(current, next string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("%w: invalid page URL %q: %v", ErrMalformedResponse, current, err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%w: invalid next link %q: %v", ErrMalformedResponse, next, err)
	}
	return base.ResolveReference(ref).String(), nil
}
