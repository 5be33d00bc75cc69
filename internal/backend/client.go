package backend

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lostfound-desk/config"
	"lostfound-desk/internal/logging"
	"lostfound-desk/internal/model"
)

// RequestIDHeader carries the correlation id of every request.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds a request when the config does not.
const DefaultTimeout = 30 * time.Second

// SearchResult is a normalised search response.
type SearchResult struct {
	Garments []model.Garment
	Message  string // server message, if the envelope carried one
}

// Client talks to the garment backend. Every call is bounded by the
// configured timeout and every failure is returned as *Error.
type Client struct {
	http   *resty.Client
	cfg    config.APIConfig
	logger *zap.Logger
}

// NewClient creates a backend client from the api section of the config.
func NewClient(cfg config.APIConfig, logger *zap.Logger) *Client {
	logger = logging.OrNop(logger)
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeaders(cfg.Headers)

	if cfg.HTTPProxy != "" {
		httpClient.SetProxy(cfg.HTTPProxy)
	}

	httpClient.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(RequestIDHeader) == "" {
			r.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})

	if cfg.UpdateMethod == "" {
		cfg.UpdateMethod = http.MethodPatch
	}
	if !strings.Contains(cfg.UpdatePath, "{id}") {
		cfg.UpdatePath = strings.TrimRight(cfg.UpdatePath, "/") + "/{id}"
	}

	return &Client{http: httpClient, cfg: cfg, logger: logger}
}

// CreateGarment registers a new garment and returns the id the backend assigned.
func (c *Client) CreateGarment(ctx context.Context, payload model.CreatePayload) (*model.CreatedGarment, error) {
	req := c.http.R().SetContext(ctx).SetBody(payload)
	body, err := c.do(req, http.MethodPost, c.cfg.CreatePath)
	if err != nil {
		return nil, err
	}

	created, err := decodeCreated(body)
	if err != nil {
		c.logger.Error("create response is malformed", zap.Error(err), zap.ByteString("body", truncate(body)))
		return nil, &Error{Kind: KindMalformed, Err: err}
	}
	return created, nil
}

// SearchByRUT lists the garments registered under an owner identifier.
func (c *Client) SearchByRUT(ctx context.Context, rut string) (*SearchResult, error) {
	req := c.http.R().SetContext(ctx).SetQueryParam("rut", rut)
	body, err := c.do(req, http.MethodGet, c.cfg.SearchPath)
	if err != nil {
		return nil, err
	}

	garments, message, err := decodeSearch(body)
	if err != nil {
		c.logger.Error("search response is malformed", zap.Error(err), zap.ByteString("body", truncate(body)))
		return nil, &Error{Kind: KindMalformed, Err: err}
	}
	for _, g := range garments {
		c.warnSkippedTimestamps(g)
	}
	return &SearchResult{Garments: garments, Message: message}, nil
}

// warnSkippedTimestamps logs record timestamps the decoder had to leave unset.
func (c *Client) warnSkippedTimestamps(g model.Garment) {
	if skipped := g.SkippedTimestamps(); len(skipped) > 0 {
		c.logger.Warn("ignoring unreadable record timestamps", zap.Int64("id", g.ID), zap.Strings("fields", skipped))
	}
}

// UpdateReturnStatus sets the return status of the garment with the given id.
// Only the new status is sent.
func (c *Client) UpdateReturnStatus(ctx context.Context, id int64, status model.ReturnStatus) (*model.StatusUpdateResponse, error) {
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(model.StatusUpdatePayload{ReturnStatus: status})
	body, err := c.do(req, c.cfg.UpdateMethod, c.cfg.UpdatePath)
	if err != nil {
		return nil, err
	}

	resp, err := decodeStatusUpdate(body)
	if err != nil {
		c.logger.Error("status update response is malformed", zap.Error(err), zap.ByteString("body", truncate(body)))
		return nil, &Error{Kind: KindMalformed, Err: err}
	}
	if resp.Data != nil {
		c.warnSkippedTimestamps(*resp.Data)
	}
	return resp, nil
}

// do executes req and returns the body of a 2xx response. Any other outcome
// comes back as *Error.
func (c *Client) do(req *resty.Request, method, path string) ([]byte, error) {
	resp, err := req.Execute(method, path)
	requestID := req.Header.Get(RequestIDHeader)
	if err != nil {
		be := classifyTransport(err)
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.String("kind", string(be.Kind)),
			zap.Error(err),
		)
		return nil, be
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()),
	)

	if !resp.IsSuccess() {
		be := classifyStatus(resp.StatusCode(), resp.Body())
		c.logger.Warn("backend returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("kind", string(be.Kind)),
			zap.String("message", be.Message),
		)
		return nil, be
	}
	return resp.Body(), nil
}

func truncate(b []byte) []byte {
	const limit = 512
	if len(b) > limit {
		return b[:limit]
	}
	return b
}
