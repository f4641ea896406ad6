package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Rate limiting: TMDB allows roughly 40 requests per 10 seconds
	rateLimit = 4
	rateBurst = 10

	// Timeout grows per attempt; transport failures are retried with a
	// linear backoff, HTTP-level rejections are not retried at all.
	maxRetries  = 2
	baseTimeout = 8 * time.Second
	timeoutStep = 3 * time.Second
	retryDelay  = 1 * time.Second
)

// UpstreamError is a non-2xx response from TMDB. It is terminal for the call:
// a rejected request is never retried, unlike a hung one.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tmdb: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsUpstreamError reports whether err wraps a non-2xx TMDB response.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Client handles TMDB API requests with rate limiting and retry logic
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter

	maxRetries  int
	baseTimeout time.Duration
	timeoutStep time.Duration
	retryDelay  time.Duration
}

// NewClient creates a new TMDB API client. The credential style is detected
// structurally: v4 read access tokens (JWTs) go into an Authorization header,
// legacy v3 keys into the api_key query parameter.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxRetries:  maxRetries,
		baseTimeout: baseTimeout,
		timeoutStep: timeoutStep,
		retryDelay:  retryDelay,
	}
}

// GetDramaDetail fetches the full detail record for a series
func (c *Client) GetDramaDetail(ctx context.Context, id int64, language string) (*DramaDetails, error) {
	var detail DramaDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d", id), language, nil, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch drama %d: %w", id, err)
	}
	return &detail, nil
}

// GetCredits fetches the cast list for a series
func (c *Client) GetCredits(ctx context.Context, id int64, language string) (*CreditsResponse, error) {
	var credits CreditsResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d/credits", id), language, nil, &credits); err != nil {
		return nil, fmt.Errorf("failed to fetch credits for drama %d: %w", id, err)
	}
	return &credits, nil
}

// GetVideos fetches trailers and teasers for a series
func (c *Client) GetVideos(ctx context.Context, id int64, language string) (*VideosResponse, error) {
	var videos VideosResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d/videos", id), language, nil, &videos); err != nil {
		return nil, fmt.Errorf("failed to fetch videos for drama %d: %w", id, err)
	}
	return &videos, nil
}

// GetImages fetches backdrops, posters and logos for a series. Images are not
// language-scoped; passing a language would filter out most artwork.
func (c *Client) GetImages(ctx context.Context, id int64) (*ImagesResponse, error) {
	var images ImagesResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d/images", id), "", nil, &images); err != nil {
		return nil, fmt.Errorf("failed to fetch images for drama %d: %w", id, err)
	}
	return &images, nil
}

// GetSeasonDetail fetches a single season, used to backfill synopsis and
// episode counts missing from the inline season summaries
func (c *Client) GetSeasonDetail(ctx context.Context, id int64, seasonNumber int, language string) (*SeasonDetails, error) {
	var season SeasonDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d/season/%d", id, seasonNumber), language, nil, &season); err != nil {
		return nil, fmt.Errorf("failed to fetch season %d of drama %d: %w", seasonNumber, id, err)
	}
	return &season, nil
}

// SearchDramas performs a live title search
func (c *Client) SearchDramas(ctx context.Context, query string, page int, language string) (*PagedResults, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", fmt.Sprintf("%d", page))

	var results PagedResults
	if err := c.doRequest(ctx, "/search/tv", language, params, &results); err != nil {
		return nil, fmt.Errorf("failed to search dramas: %w", err)
	}
	return &results, nil
}

// GetPopular fetches the popular series list
func (c *Client) GetPopular(ctx context.Context, page int, language string) (*PagedResults, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))

	var results PagedResults
	if err := c.doRequest(ctx, "/tv/popular", language, params, &results); err != nil {
		return nil, fmt.Errorf("failed to fetch popular dramas: %w", err)
	}
	return &results, nil
}

// GetTrending fetches this week's trending series
func (c *Client) GetTrending(ctx context.Context, language string) (*PagedResults, error) {
	var results PagedResults
	if err := c.doRequest(ctx, "/trending/tv/week", language, nil, &results); err != nil {
		return nil, fmt.Errorf("failed to fetch trending dramas: %w", err)
	}
	return &results, nil
}

// GetWatchProviders fetches per-country streaming availability
func (c *Client) GetWatchProviders(ctx context.Context, id int64) (*WatchProvidersResponse, error) {
	var providers WatchProvidersResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/tv/%d/watch/providers", id), "", nil, &providers); err != nil {
		return nil, fmt.Errorf("failed to fetch watch providers for drama %d: %w", id, err)
	}
	return &providers, nil
}

// doRequest performs a GET with rate limiting, a per-attempt timeout that
// grows with the attempt count, and a linear backoff between attempts.
// Transport failures (timeouts, resets) are retried; non-2xx responses
// surface immediately as an UpstreamError.
func (c *Client) doRequest(ctx context.Context, endpoint, language string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	if language != "" {
		params.Set("language", language)
	}
	if c.apiKey != "" && !isBearerCredential(c.apiKey) {
		params.Set("api_key", c.apiKey)
	}

	fullURL := c.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.baseTimeout+time.Duration(attempt)*c.timeoutStep)

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fullURL, nil)
		if err != nil {
			cancel()
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "DramaHub/1.0")
		if isBearerCredential(c.apiKey) {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			cancel()
			lastErr = err
			if attempt < c.maxRetries {
				delay := time.Duration(attempt+1) * c.retryDelay
				log.Printf("[TMDB] request failed (attempt %d/%d): %v, retrying in %v...",
					attempt+1, c.maxRetries+1, err, delay)
				time.Sleep(delay)
				continue
			}
			return fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		if readErr != nil {
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// isBearerCredential detects a v4 read access token by its JWT prefix.
func isBearerCredential(key string) bool {
	return strings.HasPrefix(key, "eyJ")
}
