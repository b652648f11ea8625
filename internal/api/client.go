package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
)

var (
	ErrTransport = errors.New("upstream transport failure")
	ErrStatus    = errors.New("upstream non-success status")
	ErrMalformed = errors.New("malformed upstream response")
)

// StatusError is returned when the upstream answers outside the 2xx range.
type StatusError struct {
	Op     string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Client talks to the upstream meters API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type metersEnvelope struct {
	Results *[]domain.Meter `json:"results"`
	Count   int             `json:"count"`
}

type areasEnvelope struct {
	Results *[]domain.Address `json:"results"`
}

// ListMeters fetches one offset/limit window of meters.
func (c *Client) ListMeters(ctx context.Context, limit, offset int) (*domain.MetersPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var env metersEnvelope
	if err := c.getJSON(ctx, opListMeters, "/meters/", &env, params); err != nil {
		return nil, err
	}
	if env.Results == nil {
		observeMalformed(opListMeters)
		return nil, fmt.Errorf("%s: %w: missing results", opListMeters, ErrMalformed)
	}
	return &domain.MetersPage{Results: *env.Results, Count: env.Count}, nil
}

// Areas looks up the areas matching one identifier. The upstream filters with id__in,
// so zero or more records may come back.
func (c *Client) Areas(ctx context.Context, id string) ([]domain.Address, error) {
	params := url.Values{}
	params.Set("id__in", id)

	var env areasEnvelope
	if err := c.getJSON(ctx, opAreas, "/areas/", &env, params); err != nil {
		return nil, err
	}
	if env.Results == nil {
		observeMalformed(opAreas)
		return nil, fmt.Errorf("%s %s: %w: missing results", opAreas, id, ErrMalformed)
	}
	return *env.Results, nil
}

// DeleteMeter removes one meter. Any 2xx counts as success; the body is not read.
func (c *Client) DeleteMeter(ctx context.Context, id string) error {
	u := c.baseURL + "/meters/" + url.PathEscape(id) + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeUpstream(opDeleteMeter, outcomeTransport, time.Since(start))
		return fmt.Errorf("%s %s: %w: %w", opDeleteMeter, id, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observeUpstream(opDeleteMeter, outcomeStatus, time.Since(start))
		return &StatusError{Op: opDeleteMeter, Code: resp.StatusCode, Status: resp.Status}
	}
	observeUpstream(opDeleteMeter, outcomeOK, time.Since(start))
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any, params url.Values) error {
	u := c.baseURL + path
	if params != nil {
		if q := params.Encode(); q != "" {
			u += "?" + q
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeUpstream(op, outcomeTransport, time.Since(start))
		return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observeUpstream(op, outcomeStatus, time.Since(start))
		return &StatusError{Op: op, Code: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		observeUpstream(op, outcomeMalformed, time.Since(start))
		return fmt.Errorf("%s: %w: %v", op, ErrMalformed, err)
	}
	observeUpstream(op, outcomeOK, time.Since(start))
	return nil
}
