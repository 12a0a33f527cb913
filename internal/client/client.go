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

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/rs/zerolog"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// TokenSource provides the bearer token for outgoing requests and is told
// when the backend rejects it.
type TokenSource interface {
	Token() string
	Invalidate(ctx context.Context)
}

// Navigator moves the application to another route.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Client is an HTTP client bound to one backend. It attaches the session
// token to every request and resets the session when the backend answers 401.
type Client struct {
	BaseURL    string
	Timeout    time.Duration
	LoginPath  string
	HTTPClient *http.Client
	Session    TokenSource
	Nav        Navigator
	Log        *zerolog.Logger
}

// Response is a fully read 2xx response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// NewClient creates a new instance of Client.
func NewClient(cfg appconfig.APIConfig, loginPath string, session TokenSource, nav Navigator, log *zerolog.Logger) *Client {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Client{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		Timeout:    cfg.Timeout,
		LoginPath:  loginPath,
		HTTPClient: &http.Client{},
		Session:    session,
		Nav:        nav,
		Log:        log,
	}
}

type requestOptions struct {
	headers         http.Header
	query           url.Values
	bearer          *string
	skipInterceptor bool
}

// RequestOption customises a single request.
type RequestOption func(*requestOptions)

// WithHeader sets an extra header, overriding the defaults.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Set(key, value)
	}
}

// WithQuery adds query parameters.
func WithQuery(values url.Values) RequestOption {
	return func(o *requestOptions) {
		for k, vs := range values {
			for _, v := range vs {
				o.query.Add(k, v)
			}
		}
	}
}

// WithBearer uses token instead of the session token.
func WithBearer(token string) RequestOption {
	return func(o *requestOptions) {
		o.bearer = &token
	}
}

// WithoutAuthInterceptor leaves the session alone when the request gets a 401.
func WithoutAuthInterceptor() RequestOption {
	return func(o *requestOptions) {
		o.skipInterceptor = true
	}
}

// Do sends a request to path relative to the base URL. Bodies of type
// url.Values are form-encoded, []byte and io.Reader are sent as is and
// anything else is encoded as JSON. Non-2xx responses return *HTTPError,
// requests that got no response return *TransportError.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	o := requestOptions{headers: http.Header{}, query: url.Values{}}
	for _, opt := range opts {
		opt(&o)
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	target, err := c.resolve(path, o.query)
	if err != nil {
		return nil, fmt.Errorf("failed to build request url: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentTypeJSON)
	if token := c.token(o); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	for k, vs := range o.headers {
		req.Header[k] = vs
	}

	logger := c.Log.With().Str("method", method).Str("url", target).Logger()
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("request failed without response")
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request completed")

	if resp.StatusCode == http.StatusUnauthorized && !o.skipInterceptor {
		c.handleUnauthorized(ctx, logger)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Message: fmt.Sprintf("error response: status %d, body: %s", resp.StatusCode, string(respBody)),
			Status:  resp.StatusCode,
			Body:    respBody,
		}
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

// handleUnauthorized drops the session and sends the user back to the
// login route. It runs even if the request context is already done.
func (c *Client) handleUnauthorized(ctx context.Context, logger zerolog.Logger) {
	ctx = context.WithoutCancel(ctx)

	logger.Warn().Msg("backend rejected credentials, clearing session")
	if c.Session != nil {
		c.Session.Invalidate(ctx)
	}
	if c.Nav != nil && c.LoginPath != "" {
		if err := c.Nav.Navigate(ctx, c.LoginPath); err != nil {
			logger.Error().Err(err).Msg("failed to navigate to login")
		}
	}
}

func (c *Client) token(o requestOptions) string {
	if o.bearer != nil {
		return *o.bearer
	}
	if c.Session != nil {
		return c.Session.Token()
	}
	return ""
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, contentTypeJSON, nil
	case url.Values:
		return strings.NewReader(b.Encode()), contentTypeForm, nil
	case []byte:
		return bytes.NewReader(b), contentTypeJSON, nil
	case io.Reader:
		return b, contentTypeJSON, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), contentTypeJSON, nil
}
