package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/logger"
	"github.com/oshokin/security-zone/internal/version"
)

const (
	// apiPath is the JSON endpoint of the hub.
	apiPath = "/json.htm"

	// statusOK is the status the hub reports for a successful call.
	statusOK = "OK"

	// switchOn is the status value of an active switch.
	switchOn = "On"

	// maxResponseSize bounds the decoded response body.
	maxResponseSize = 8 << 20
)

var (
	// errUnexpectedStatus is returned for a non-200 HTTP response.
	errUnexpectedStatus = errors.New("unexpected http status")
	// errAPIStatus is returned when the hub answers with a status other than OK.
	errAPIStatus = errors.New("hub api returned an error")
	// errInvalidSwitch is returned when a switch id is not positive.
	errInvalidSwitch = errors.New("switch id must be positive")
)

// Client is the sensor hub API client.
type Client struct {
	// baseURL is scheme, host and port of the hub.
	baseURL *url.URL
	// username and password enable basic auth when username is set.
	username string
	password string
	// timeout bounds every call.
	timeout time.Duration
	// httpClient performs the requests.
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL points the client at a full base URL, used by tests.
func WithBaseURL(base *url.URL) Option {
	return func(c *Client) {
		if base != nil {
			c.baseURL = base
		}
	}
}

// New creates a client for the configured hub.
func New(cfg config.HubConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultHubTimeout
	}

	c := &Client{
		baseURL: &url.URL{
			Scheme: "http",
			Host:   net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port)),
		},
		username: cfg.Username,
		password: cfg.Password,
		timeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// device is the part of a hub device entry the zone needs.
type device struct {
	Idx    string  `json:"idx"`
	Name   string  `json:"Name"`
	Status *string `json:"Status"`
}

// response is the envelope of every hub answer.
type response struct {
	Status string   `json:"status"`
	Title  string   `json:"title"`
	Result []device `json:"result"`
}

// Poll returns the current state of the requested sensors.
// Sensors absent from the hub answer, or that are not switches, are left out
// of the map: their state is unknown, not inactive.
func (c *Client) Poll(ctx context.Context, ids []zone.SensorID) (map[zone.SensorID]bool, error) {
	query := url.Values{
		"type":   {"devices"},
		"filter": {"light"},
		"used":   {"true"},
		"order":  {"Name"},
	}

	resp, err := c.call(ctx, query)
	if err != nil {
		return nil, err
	}

	wanted := make(map[zone.SensorID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	readings := make(map[zone.SensorID]bool, len(ids))

	for _, d := range resp.Result {
		idx, err := strconv.Atoi(d.Idx)
		if err != nil {
			continue
		}

		if _, ok := wanted[zone.SensorID(idx)]; !ok {
			continue
		}

		if d.Status == nil {
			logger.ErrorKV(ctx, "Device does not seem to be a switch", "idx", idx, "name", d.Name)
			continue
		}

		readings[zone.SensorID(idx)] = *d.Status == switchOn

		logger.DebugKV(ctx, "Sensor polled", "idx", idx, "status", *d.Status)
	}

	return readings, nil
}

// SetOutput switches a hub device on or off.
func (c *Client) SetOutput(ctx context.Context, idx int, on bool) error {
	if idx <= 0 {
		return errInvalidSwitch
	}

	command := "Off"
	if on {
		command = "On"
	}

	query := url.Values{
		"type":      {"command"},
		"param":     {"switchlight"},
		"idx":       {strconv.Itoa(idx)},
		"switchcmd": {command},
	}

	if _, err := c.call(ctx, query); err != nil {
		return fmt.Errorf("switch %d %s: %w", idx, command, err)
	}

	return nil
}

// call performs one bounded API request and decodes the envelope.
// Every failure wraps zone.ErrPoll.
func (c *Client) call(ctx context.Context, query url.Values) (*response, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath(apiPath)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", zone.ErrPoll, err)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	req.Header.Set("User-Agent", version.UserAgent())

	logger.DebugKV(ctx, "Calling hub API", "url", endpoint.Redacted())

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", zone.ErrPoll, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w: %d", zone.ErrPoll, errUnexpectedStatus, httpResp.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(io.LimitReader(httpResp.Body, maxResponseSize)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", zone.ErrPoll, err)
	}

	if decoded.Status != statusOK {
		return nil, fmt.Errorf("%w: %w: status = %s", zone.ErrPoll, errAPIStatus, decoded.Status)
	}

	return &decoded, nil
}
