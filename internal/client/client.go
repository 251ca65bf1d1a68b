// Package client talks to a running voicerec daemon.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/devbydaniel/voicerec/internal/api"
	"github.com/devbydaniel/voicerec/internal/catalog"
	"github.com/devbydaniel/voicerec/internal/domain/recording"
)

// ErrDaemonUnreachable means nothing answered at the configured address.
var ErrDaemonUnreachable = errors.New("voicerec daemon is not running (start it with 'voicerec serve')")

// APIError is an error response from the daemon.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

type Client struct {
	r *resty.Client
}

// New returns a client for baseURL. timeout must cover a stop, which waits
// for stitching to finish.
func New(baseURL string, timeout time.Duration) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{r: r}
}

func (c *Client) Health(ctx context.Context) error {
	_, err := c.send(ctx, "GET", "/health", nil, nil)
	return err
}

func (c *Client) Start(ctx context.Context, opts recording.Options) (*api.StartResponse, error) {
	var out api.StartResponse
	if _, err := c.send(ctx, "POST", api.Prefix+"/recording/start", opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pause reports false with the daemon's reason when nothing is recording.
func (c *Client) Pause(ctx context.Context) (*api.ValueResponse, error) {
	var out api.ValueResponse
	if _, err := c.send(ctx, "POST", api.Prefix+"/recording/pause", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Resume(ctx context.Context) (*api.ValueResponse, error) {
	var out api.ValueResponse
	if _, err := c.send(ctx, "POST", api.Prefix+"/recording/resume", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stop(ctx context.Context) (*api.StopResponse, error) {
	var out api.StopResponse
	if _, err := c.send(ctx, "POST", api.Prefix+"/recording/stop", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var out api.StatusResponse
	if _, err := c.send(ctx, "GET", api.Prefix+"/recording/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Interrupt(ctx context.Context, kind string) error {
	var out api.InterruptionResponse
	_, err := c.send(ctx, "POST", api.Prefix+"/interruptions", api.InterruptionRequest{Type: kind}, &out)
	return err
}

func (c *Client) Recordings(ctx context.Context, outcome string, limit int) ([]catalog.Recording, error) {
	q := url.Values{}
	if outcome != "" {
		q.Set("outcome", outcome)
	}
	q.Set("limit", strconv.Itoa(limit))

	var out api.RecordingsResponse
	if _, err := c.send(ctx, "GET", api.Prefix+"/recordings?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Recordings, nil
}

func (c *Client) send(ctx context.Context, method, path string, body, result any) (*resty.Response, error) {
	var apiErr api.ErrorResponse
	req := c.r.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("%w: %v", ErrDaemonUnreachable, err)
		}
		return nil, err
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		return resp, &APIError{Status: resp.StatusCode(), Code: apiErr.Code, Message: msg}
	}
	return resp, nil
}
