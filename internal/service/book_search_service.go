package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dom/reader/internal/config"
	"github.com/dom/reader/internal/domain"
)

// BookSearchService queries the Google Books volumes API.
type BookSearchService struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
}

func NewBookSearchService(cfg config.GoogleBooksConfig) *BookSearchService {
	return &BookSearchService{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *BookSearchService) Search(ctx context.Context, term string) (*domain.VolumeSearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrSearchTermRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL(term), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrCatalogUnavailable, resp.StatusCode, string(body))
	}

	var result domain.VolumeSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if result.Items == nil {
		result.Items = []domain.Volume{}
	}

	return &result, nil
}

func (s *BookSearchService) searchURL(term string) string {
	q := url.Values{}
	q.Set("q", term)
	q.Set("maxResults", strconv.Itoa(s.maxResults))
	q.Set("printType", "books")
	if s.apiKey != "" {
		q.Set("key", s.apiKey)
	}
	return s.baseURL + "?" + q.Encode()
}
