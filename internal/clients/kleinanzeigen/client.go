package kleinanzeigen

import (
	"context"
	"fmt"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"strconv"
	"time"
)

// browserHeaders are sent with every request; the site rejects clients it
// does not recognize. Accept-Encoding must stay out of this set: the transport
// negotiates gzip on its own and transparently decompresses only when it set
// the header itself.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "de-DE,de;q=0.8,en-US;q=0.5,en;q=0.3",
	"Connection":      "keep-alive",
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches search result pages. A single instance reuses one underlying
// http.Client and serializes outbound requests through the politeness limiter.
type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
}

func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

// SetMinRequestInterval enforces a minimum delay between any two outbound
// requests this client issues.
func (c *Client) SetMinRequestInterval(interval time.Duration) {
	c.rateLimiter = rate.NewLimiter(rate.Every(interval), 1)
}

// FetchPage retrieves one results page. The search URL always carries query
// parameters, so pagination appends pageNum for pages past the first.
func (c *Client) FetchPage(ctx context.Context, searchURL string, page int) ([]byte, error) {

	if page < 1 {
		return nil, fmt.Errorf("page must be positive, got %d", page)
	}

	pageURL := searchURL
	if page > 1 {
		pageURL += "&pageNum=" + strconv.Itoa(page)
	}

	return c.sendRequest(ctx, pageURL)
}

func (c *Client) sendRequest(ctx context.Context, url string) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %v", resp.StatusCode)
	}

	return body, nil
}
