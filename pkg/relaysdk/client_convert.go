package relaysdk

import (
	"context"
	"errors"
	"net/http"
)

// Convert submits a conversion job and returns the engine's immediate reply.
func (c *Client) Convert(ctx context.Context, token string, req ConvertRequest) (Result, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/convert", token, req, nil)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if err := decodeJSON(resp, &res, http.StatusOK); err != nil {
		return Result{}, err
	}
	return res, nil
}

// GetResult polls for the callback result of token. found is false while the
// relay still answers 404 pending.
func (c *Client) GetResult(ctx context.Context, token string) (res Result, found bool, err error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/result", token, nil, nil)
	if err != nil {
		return Result{}, false, err
	}

	if err := decodeJSON(resp, &res, http.StatusOK); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return Result{}, false, nil
		}
		return Result{}, false, err
	}
	return res, true, nil
}
