package riot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"tournament-stats/internal/apierr"

	json "github.com/goccy/go-json"
)

const (
	service = "riot"

	defaultTimeout = 30 * time.Second
)

// RegionBaseURL returns the regional routing host for match-v5 calls.
// Regions: americas, europe, asia, sea.
func RegionBaseURL(region string) string {
	return fmt.Sprintf("https://%s.api.riotgames.com", region)
}

// Limiter throttles outbound calls; see ratelimit.Limiter.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client is a rate-limited Riot API client for the match-v5 endpoints
// that tournament lobbies report to.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    Limiter
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithClientBaseURL overrides the regional host (useful for testing)
func WithClientBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Riot API client for the given region. Every request
// waits on limiter first.
func NewClient(apiKey, region string, limiter Limiter, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("riot API key is empty")
	}
	if limiter == nil {
		return nil, fmt.Errorf("riot client needs a rate limiter")
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: RegionBaseURL(region),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: limiter,
	}
	for _, opt := range opts {
		opt(c)
	}

	log.Printf("[Riot] Using API key %s against %s", MaskAPIKey(apiKey), c.baseURL)
	return c, nil
}

// doRequest makes a rate-limited GET and decodes the JSON body into result.
// Non-2xx responses come back as *apierr.StatusError.
func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apierr.Transient(service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := apierr.FromResponse(service, resp)
		var body errorBody
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &body) == nil {
				statusErr.Message = body.Status.Message
			}
		}
		if errors.Is(statusErr, apierr.ErrRateLimited) {
			log.Printf("[Riot] 429 Rate Limited on %s (Retry-After %s)", endpoint, statusErr.RetryAfter)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apierr.Transient(service, fmt.Errorf("decode %s: %w", endpoint, err))
	}
	return nil
}

// ResolveMatchIDs returns the match IDs played with a tournament code. A code
// whose lobby has not finished a game yet yields apierr.ErrNotFound.
func (c *Client) ResolveMatchIDs(ctx context.Context, code string) ([]string, error) {
	endpoint := fmt.Sprintf("/lol/match/v5/matches/by-tournament-code/%s/ids", url.PathEscape(code))

	var matchIDs []string
	if err := c.doRequest(ctx, endpoint, &matchIDs); err != nil {
		return nil, fmt.Errorf("resolve tournament code %s: %w", code, err)
	}
	if len(matchIDs) == 0 {
		return nil, fmt.Errorf("tournament code %s has no completed match: %w", code, apierr.ErrNotFound)
	}
	return matchIDs, nil
}

// FetchMatch fetches match details
func (c *Client) FetchMatch(ctx context.Context, matchID string) (*MatchResponse, error) {
	endpoint := fmt.Sprintf("/lol/match/v5/matches/%s", url.PathEscape(matchID))

	var match MatchResponse
	if err := c.doRequest(ctx, endpoint, &match); err != nil {
		return nil, fmt.Errorf("fetch match %s: %w", matchID, err)
	}
	return &match, nil
}

// MaskAPIKey masks an API key for display (e.g., "RGAPI-xxxx-xxxx" -> "RGAPI...xxxx")
func MaskAPIKey(key string) string {
	if len(key) <= 10 {
		return "****"
	}
	return key[:5] + "..." + key[len(key)-4:]
}
