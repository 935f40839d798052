package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const userAgent = "git-forge"

// maxErrorBody bounds how much of a failing response is echoed into errors.
const maxErrorBody = 2048

// httpClient is a thin wrapper around net/http shared by the forge clients.
type httpClient struct {
	client *http.Client
}

func newHTTPClient() *httpClient {
	return &httpClient{client: &http.Client{Timeout: 30 * time.Second}}
}

// auth describes how a forge authenticates: a token read from the
// environment, sent with the given scheme in the Authorization header.
type auth struct {
	envVar string
	scheme string
}

// header returns the Authorization header value. When required is false a
// missing token is not an error and the request goes out unauthenticated.
func (a auth) header(required bool) (string, error) {
	token := os.Getenv(a.envVar)
	if token == "" {
		if required {
			return "", fmt.Errorf("authentication required: set the %s environment variable", a.envVar)
		}
		return "", nil
	}
	return a.scheme + " " + token, nil
}

// getJSON performs a GET and decodes the JSON body into out. It reports
// whether the response advertises a next page via the Link header.
func (c *httpClient) getJSON(ctx context.Context, rawURL string, query url.Values, a auth, extra http.Header, out any) (bool, error) {
	u := rawURL
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	if err := c.prepare(req, a, false, extra); err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return false, err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("parsing response from %s: %w", rawURL, err)
	}
	return hasNextLink(resp.Header), nil
}

// postJSON performs an authenticated POST with a JSON body and decodes the
// JSON response into out.
func (c *httpClient) postJSON(ctx context.Context, rawURL string, a auth, extra http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.prepare(req, a, true, extra); err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response from %s: %w", rawURL, err)
	}
	return nil
}

func (c *httpClient) prepare(req *http.Request, a auth, authRequired bool, extra http.Header) error {
	req.Header.Set("User-Agent", userAgent)
	for key, values := range extra {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	header, err := a.header(authRequired)
	if err != nil {
		return err
	}
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return nil
}

// hasNextLink reports whether a Link header advertises a rel="next" page.
// All supported forges paginate this way.
func hasNextLink(h http.Header) bool {
	for _, link := range strings.Split(h.Get("Link"), ",") {
		if strings.Contains(link, `rel="next"`) {
			return true
		}
	}
	return false
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("HTTP %s from %s: %s", resp.Status, resp.Request.URL, strings.TrimSpace(string(body)))
}
