package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const defaultHTTPTimeout = 5 * time.Minute

// NewHTTPClient returns the client used for every feed request. A non-empty
// token is sent as a bearer credential, which private feeds require.
func NewHTTPClient(token string) *http.Client {
	client := &http.Client{Timeout: defaultHTTPTimeout}
	if token == "" {
		return client
	}
	client.Transport = &oauth2.Transport{
		Base:   http.DefaultTransport,
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
	}
	return client
}

// get issues a GET request and returns the response when its status is 2xx.
// The caller owns the response body.
func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w: %s", url, ErrUnexpectedStatus, resp.Status)
	}
	return resp, nil
}
