package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/syrilster/leave-api-e2e/internal/customhttp"
)

const (
	headerKeyContentType = "Content-Type"
	headerKeyAccept      = "Accept"
	contentTypeJSON      = "application/json"
)

type ClientInterface interface {
	BaseURL() string
	SetToken(token *oauth2.Token)
	Get(ctx context.Context, endpoint string) (*Response, error)
	GetWithQuery(ctx context.Context, endpoint string, query url.Values) (*Response, error)
	Post(ctx context.Context, endpoint string, payload interface{}) (*Response, error)
	Put(ctx context.Context, endpoint string, payload interface{}) (*Response, error)
	Delete(ctx context.Context, endpoint string) (*Response, error)
}

func NewClient(endpoint string, c customhttp.HTTPCommand) *client {
	return &client{
		URL:         strings.TrimRight(endpoint, "/"),
		HTTPCommand: c,
	}
}

type client struct {
	URL         string
	HTTPCommand customhttp.HTTPCommand
	token       *oauth2.Token
}

func (c *client) BaseURL() string {
	return c.URL
}

// SetToken installs the bearer token sent on every subsequent request
func (c *client) SetToken(token *oauth2.Token) {
	c.token = token
}

func (c *client) Get(ctx context.Context, endpoint string) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.buildEndpoint(endpoint, nil), nil)
}

func (c *client) GetWithQuery(ctx context.Context, endpoint string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.buildEndpoint(endpoint, query), nil)
}

func (c *client) Post(ctx context.Context, endpoint string, payload interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPost, c.buildEndpoint(endpoint, nil), payload)
}

func (c *client) Put(ctx context.Context, endpoint string, payload interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPut, c.buildEndpoint(endpoint, nil), payload)
}

func (c *client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, c.buildEndpoint(endpoint, nil), nil)
}

func (c *client) do(ctx context.Context, method string, endpoint string, payload interface{}) (*Response, error) {
	contextLogger := log.WithContext(ctx).WithFields(log.Fields{"method": method, "endpoint": endpoint})

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			contextLogger.WithError(err).Errorf("there was an error marshalling the request payload")
			return nil, fmt.Errorf("marshal %s %s payload: %w", method, endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set(headerKeyContentType, contentTypeJSON)
	httpRequest.Header.Set(headerKeyAccept, contentTypeJSON)
	if c.token != nil {
		c.token.SetAuthHeader(httpRequest)
	}

	resp, err := c.HTTPCommand.Do(httpRequest)
	if err != nil {
		contextLogger.WithError(err).Errorf("there was an error calling the HR API")
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	defer func() {
		if err = resp.Body.Close(); err != nil {
			contextLogger.WithError(err).Errorf("Error closing the ioReader. %v", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		contextLogger.WithError(err).Errorf("error reading HR API resp body")
		return nil, fmt.Errorf("read %s %s response: %w", method, endpoint, err)
	}

	contextLogger.Debugf("status returned from HR API %s", resp.Status)
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

func (c *client) buildEndpoint(endpoint string, query url.Values) string {
	u := c.URL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
