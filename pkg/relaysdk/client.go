package relaysdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to one relay. Requests that complete quickly use HTTPClient;
// event streams use StreamClient, which must not carry an overall timeout.
type Client struct {
	BaseURL      string
	HTTPClient   *http.Client
	StreamClient *http.Client
}

// NewClient creates a relay client for baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		StreamClient: &http.Client{},
	}
}
