package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go-join-pipeline/internal/metrics"
	"go-join-pipeline/internal/model"
)

// RemoteFetcher loads the incoming side of a join.
type RemoteFetcher interface {
	Fetch(ctx context.Context, address string) ([]model.Record, error)
}

// HTTPFetcher issues a single GET per fetch: no retries, no authentication
// and no timeout beyond what the client's transport enforces.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher using client, or a zero http.Client when
// client is nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{Client: client}
}

// Fetch GETs address and decodes the body as a JSON array of objects.
func (f *HTTPFetcher) Fetch(ctx context.Context, address string) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		metrics.RemoteFetch("transport_error")
		return nil, &FetchError{Address: address, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		metrics.RemoteFetch("transport_error")
		return nil, &FetchError{Address: address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RemoteFetch("bad_status")
		return nil, &FetchError{Address: address, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RemoteFetch("transport_error")
		return nil, &FetchError{Address: address, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	records, err := DecodeRecords(bodyBytes)
	if err != nil {
		metrics.RemoteFetch("bad_body")
		return nil, &FetchError{Address: address, Err: err}
	}

	metrics.RemoteFetch("ok")
	return records, nil
}

// DecodeRecords parses a JSON array whose elements are all objects.
func DecodeRecords(data []byte) ([]model.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("expected a JSON array of objects")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	records := make([]model.Record, 0, len(items))
	for i, item := range items {
		var rec model.Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
