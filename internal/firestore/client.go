package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"google.golang.org/api/googleapi"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/observability/metrics"
	"github.com/welling-fm/fireinspect/internal/privacy"
)

// Defaults for Config fields left zero
const (
	DefaultBaseURL  = "https://firestore.googleapis.com/v1"
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 300

	retryBaseDelay = 500 * time.Millisecond
)

// Config configures a Client.
type Config struct {
	BaseURL     string
	Project     string
	APIKey      string       // sent as the key query parameter when set
	HTTPClient  *http.Client // carries OAuth credentials for the other auth modes
	UserAgent   string       // used by NewClientFromSettings
	Timeout     time.Duration
	PageSize    int
	CacheTTL    time.Duration // zero disables the list cache
	MaxAttempts int           // attempts per request for 429 and 5xx responses
	Logger      logger.Logger
	Metrics     *metrics.RemoteMetrics
}

// Client talks to the Firestore REST API.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache
	log        logger.Logger
	metrics    *metrics.RemoteMetrics
}

// NewClient creates a client. Project is required; other zero fields take
// their defaults.
func NewClient(config Config) (*Client, error) {
	if strings.TrimSpace(config.Project) == "" {
		return nil, errors.Newf("firestore project is required").
			Component("firestore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	c := &Client{
		config:     config,
		httpClient: config.HTTPClient,
		log:        config.Logger,
		metrics:    config.Metrics,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.log == nil {
		c.log = logger.Global().Module("firestore")
	}
	if config.CacheTTL > 0 {
		c.cache = cache.New(config.CacheTTL, 2*config.CacheTTL)
	}

	c.log.Debug("firestore client initialized",
		logger.String("base_url", config.BaseURL),
		logger.String("project", config.Project),
		logger.Bool("api_key_configured", config.APIKey != ""),
		logger.Duration("cache_ttl", config.CacheTTL),
		logger.Int("max_attempts", config.MaxAttempts))
	return c, nil
}

// DocumentName returns the full resource name of a document path such as
// apps/welling-fm/buildings/abc.
func (c *Client) DocumentName(docPath string) string {
	return DocumentsRoot(c.config.Project) + "/" + trimSlashes(docPath)
}

// ListDocuments returns every document of collection, following page tokens
// until the listing is exhausted. Results are cached until the next write.
func (c *Client) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	collection = trimSlashes(collection)
	cacheKey := "list:" + collection
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			if docs, ok := cached.([]Document); ok {
				c.log.Debug("list cache hit", logger.String("collection", collection), logger.Int("documents", len(docs)))
				return docs, nil
			}
		}
	}

	endpoint := c.config.BaseURL + "/" + c.DocumentName(collection)
	var docs []Document
	pageToken := ""
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("pageSize", strconv.Itoa(c.config.PageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var resp listResponse
		if err := c.do(ctx, metrics.OpList, http.MethodGet, endpoint, q, nil, &resp); err != nil {
			return nil, err
		}
		docs = append(docs, resp.Documents...)
		c.log.Debug("listed page",
			logger.String("collection", collection),
			logger.Int("page", page),
			logger.Int("documents", len(resp.Documents)))

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, docs, cache.DefaultExpiration)
	}
	return docs, nil
}

// PatchDocument replaces every field of doc. There is no update mask and no
// precondition, so the stored document ends up with exactly doc.Fields.
func (c *Client) PatchDocument(ctx context.Context, doc Document) (*Document, error) {
	if doc.Name == "" {
		return nil, errors.Newf("document name is required").
			Component("firestore").
			Category(errors.CategoryValidation).
			Build()
	}
	if doc.Fields == nil {
		doc.Fields = map[string]Value{}
	}

	body, err := json.Marshal(Document{Fields: doc.Fields})
	if err != nil {
		return nil, errors.New(fmt.Errorf("encode document: %w", err)).
			Component("firestore").
			Category(errors.CategoryValidation).
			Context("document", doc.Name).
			Build()
	}

	var out Document
	if err := c.do(ctx, metrics.OpPatch, http.MethodPatch, c.config.BaseURL+"/"+doc.Name, nil, body, &out); err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Flush()
	}
	return &out, nil
}

// do sends one request, repeating it on 429 and 5xx responses up to
// MaxAttempts times, and decodes a JSON response into result.
func (c *Client) do(ctx context.Context, op, method, endpoint string, query url.Values, body []byte, result any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.config.APIKey != "" {
		query.Set("key", c.config.APIKey)
	}
	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return cancelled(err, op)
		}
		if attempt > 1 {
			delay := time.Duration(attempt-1) * retryBaseDelay
			c.log.Warn("retrying request",
				logger.String("operation", op),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Error(lastErr))
			select {
			case <-ctx.Done():
				return cancelled(ctx.Err(), op)
			case <-time.After(delay):
			}
		}

		status, err := c.once(ctx, op, method, target, body, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(status) {
			break
		}
	}
	return lastErr
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// once performs a single request and returns the HTTP status, zero when no
// response arrived.
func (c *Client) once(ctx context.Context, op, method, target string, body []byte, result any) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return 0, errors.New(fmt.Errorf("create request: %w", err)).
			Component("firestore").
			Category(errors.CategoryNetwork).
			Context("operation", op).
			Build()
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("firestore request", logger.String("method", method), logger.String("url", privacy.ScrubURL(target)))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(op, 0, time.Since(start).Seconds())
		if ctx.Err() != nil {
			return 0, cancelled(ctx.Err(), op)
		}
		return 0, errors.New(fmt.Errorf("firestore %s request failed: %w", op, privacy.WrapError(err))).
			Component("firestore").
			Category(errors.CategoryNetwork).
			Context("operation", op).
			Build()
	}
	defer resp.Body.Close()
	c.metrics.RecordRequest(op, resp.StatusCode, time.Since(start).Seconds())

	if err := googleapi.CheckResponse(resp); err != nil {
		return resp.StatusCode, responseError(err, op, resp.StatusCode)
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, errors.New(fmt.Errorf("decode %s response: %w", op, err)).
			Component("firestore").
			Category(errors.CategoryFileParsing).
			Context("operation", op).
			Context("status_code", resp.StatusCode).
			Build()
	}
	return resp.StatusCode, nil
}

// responseError maps an API error status to an error category
func responseError(err error, op string, status int) error {
	category := errors.CategoryNetwork
	switch status {
	case http.StatusNotFound:
		category = errors.CategoryNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		category = errors.CategoryConfiguration
	}

	message := err.Error()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}

	return errors.New(fmt.Errorf("firestore %s failed with status %d: %s: %w", op, status, message, err)).
		Component("firestore").
		Category(category).
		Context("operation", op).
		Context("status_code", status).
		Build()
}

func cancelled(err error, op string) error {
	return errors.New(err).
		Component("firestore").
		Category(errors.CategoryCancellation).
		Context("operation", op).
		Build()
}
