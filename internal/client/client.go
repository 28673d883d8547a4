// Package client talks to the scheduling API on behalf of booking pages and
// availability editors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/meeting-scheduler/internal/availability"
	availHttp "github.com/nekogravitycat/meeting-scheduler/internal/availability/http"
	bookingHttp "github.com/nekogravitycat/meeting-scheduler/internal/booking/http"
	"github.com/nekogravitycat/meeting-scheduler/internal/pkg/response"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithToken sends a bearer token, required by the availability endpoints.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetBooking(ctx context.Context, id string) (*bookingHttp.GetBookingResponse, error) {
	var out bookingHttp.GetBookingResponse
	if err := c.do(ctx, http.MethodGet, "/schedule/booking/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSlots(ctx context.Context, id string, date time.Time) (*bookingHttp.SlotsResponse, error) {
	q := url.Values{"date": {date.Format("2006-01-02")}}
	var out bookingHttp.SlotsResponse
	path := "/schedule/booking/" + url.PathEscape(id) + "/slots?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmBooking(ctx context.Context, id string, body bookingHttp.ConfirmBookingBody) (*bookingHttp.ConfirmBookingResponse, error) {
	var out bookingHttp.ConfirmBookingResponse
	if err := c.do(ctx, http.MethodPost, "/schedule/booking/"+url.PathEscape(id)+"/confirm", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSettings(ctx context.Context) (*availability.Settings, error) {
	var out availHttp.SettingsResponse
	if err := c.do(ctx, http.MethodGet, "/availability/settings", nil, &out); err != nil {
		return nil, err
	}
	s := out.Settings()
	return &s, nil
}

func (c *Client) UpdateSettings(ctx context.Context, patch availability.Patch) (*availability.Settings, error) {
	var out availHttp.SettingsResponse
	if err := c.do(ctx, http.MethodPut, "/availability/settings", availHttp.NewUpdateSettingsBody(patch), &out); err != nil {
		return nil, err
	}
	s := out.Settings()
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e response.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		apiErr := newAPIError(resp.StatusCode, e.Error)
		log.Ctx(ctx).Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error", e.Error).
			Msg("API request failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrServer, err)
	}
	return nil
}
