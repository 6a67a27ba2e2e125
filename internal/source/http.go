package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/memory-map/internal/domain"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

// NewHTTPClient returns a client for source fetches. A zero timeout means no limit.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// HTTPSource fetches a JSON document over HTTP and reads rows from one field.
type HTTPSource struct {
	name       string
	url        string
	field      string
	httpClient *http.Client
}

// NewSheets creates the primary source: the spreadsheet values API, whose
// response carries rows under "values". It reports ErrNotConfigured on
// every fetch when the sheet id or API key is missing.
func NewSheets(baseURL, sheetID, rangeName, apiKey string, client *http.Client) *HTTPSource {
	s := &HTTPSource{name: "sheets", field: "values", httpClient: client}
	if sheetID == "" || apiKey == "" {
		return s
	}
	s.url = SheetsURL(baseURL, sheetID, rangeName, apiKey)
	return s
}

// SheetsURL builds a spreadsheet values API URL.
func SheetsURL(baseURL, sheetID, rangeName, apiKey string) string {
	return fmt.Sprintf("%s/%s/values/%s?%s",
		baseURL,
		url.PathEscape(sheetID),
		url.PathEscape(rangeName),
		url.Values{"key": {apiKey}}.Encode(),
	)
}

// NewMirror creates the secondary source: a static JSON snapshot served
// over HTTP with rows under field.
func NewMirror(rawURL, field string, client *http.Client) *HTTPSource {
	return &HTTPSource{name: "mirror", url: rawURL, field: field, httpClient: client}
}

func (s *HTTPSource) Name() string { return s.name }

// Fetch downloads the document and decodes its rows.
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	if s.url == "" {
		return nil, fmt.Errorf("%s: %w", s.name, ErrNotConfigured)
	}

	body, err := s.get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(body, s.field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return rows, nil
}

func (s *HTTPSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", s.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", s.name, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: status %d", s.name, ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read body: %w", s.name, ErrTransport, err)
	}
	return body, nil
}
