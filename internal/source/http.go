package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskprogress-cli/internal/model"
)

// HTTPFetcher GETs the collection from a URL.
type HTTPFetcher struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]model.Group, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body so the error is useful.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("fetch %s: %s: %s", f.URL, resp.Status, string(snippet))
	}
	return Decode(resp.Body)
}
