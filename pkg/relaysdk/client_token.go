package relaysdk

import (
	"context"
	"fmt"
	"net/http"
)

// IssueToken exchanges the shared client secret for a bearer token. The
// secret travels in both the X-Client-Secret header and the body.
func (c *Client) IssueToken(ctx context.Context, clientSecret string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/token", "",
		TokenRequest{ClientSecret: clientSecret},
		map[string]string{"X-Client-Secret": clientSecret},
	)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	if tokenResp.Token == "" {
		return nil, fmt.Errorf("token response carried no token")
	}

	return &tokenResp, nil
}
