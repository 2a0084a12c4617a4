package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"storefront/internal/domain"
)

// HeaderRequestID carries a per-submission id to the checkout service.
const HeaderRequestID = "X-Request-Id"

const maxResponseBytes = 1 << 20

// Client posts orders to the remote checkout endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *log.Logger
}

// New fails fast on a malformed endpoint; it is a configuration error.
func New(endpoint string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid checkout url %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid checkout url %q: scheme must be http or https", endpoint)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		endpoint: u.String(),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

// Submit sends one order. A non-2xx answer becomes a *domain.SubmissionError
// carrying the status and the decoded body; a request that never got an answer
// becomes one with only Err set.
func (c *Client) Submit(ctx context.Context, order domain.Order) (*domain.Confirmation, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, &domain.SubmissionError{Err: fmt.Errorf("encode order: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.SubmissionError{Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("checkout client: request_id=%s transport error=%v", requestID, err)
		return nil, &domain.SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Printf("checkout client: request_id=%s status=%d read error=%v", requestID, resp.StatusCode, err)
		return nil, &domain.SubmissionError{Status: resp.StatusCode, Err: err}
	}
	c.logger.Printf("checkout client: request_id=%s status=%d duration=%s", requestID, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejection(resp.StatusCode, body)
	}

	conf := &domain.Confirmation{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return conf, nil
	}
	if json.Valid(trimmed) {
		conf.Raw = json.RawMessage(trimmed)
		var fields struct {
			OrderID string `json:"orderId"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			conf.OrderID = fields.OrderID
			conf.Message = fields.Message
		}
	} else {
		conf.Message = strings.TrimSpace(string(trimmed))
	}
	return conf, nil
}

func rejection(status int, body []byte) *domain.SubmissionError {
	subErr := &domain.SubmissionError{Status: status, Raw: strings.TrimSpace(string(body))}
	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		subErr.Body = parsed
	} else {
		subErr.Err = fmt.Errorf("unparsable rejection body: %w", err)
	}
	return subErr
}
