package ddragon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is Riot's static data CDN.
const DefaultBaseURL = "https://ddragon.leagueoflegends.com"

// Locale of every data file the picker reads.
const Locale = "en_US"

const (
	defaultRequestsPerSecond = 50
	defaultBurst             = 50
)

type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

type Option func(*Client)

// WithBaseURL points the client at another CDN, for tests and mirrors.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the default client with its 10s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) { c.rateLimiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst) }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		rateLimiter: rate.NewLimiter(defaultRequestsPerSecond, defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Versions returns every published game version, newest first.
func (c *Client) Versions(ctx context.Context) ([]string, error) {
	var versions []string
	if err := c.getJSON(ctx, c.baseURL+"/api/versions.json", &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// LatestVersion returns the newest published game version.
func (c *Client) LatestVersion(ctx context.Context) (string, error) {
	versions, err := c.Versions(ctx)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no versions published")
	}
	return versions[0], nil
}

// Champions returns the champion list of a version keyed by champion id (e.g. "MonkeyKing").
func (c *Client) Champions(ctx context.Context, version string) (map[string]ChampionSummary, error) {
	fullURL := fmt.Sprintf("%s/cdn/%s/data/%s/champion.json", c.baseURL, url.PathEscape(version), Locale)

	var list ChampionList
	if err := c.getJSON(ctx, fullURL, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// ChampionSkins returns every skin of a champion, the base skin included.
func (c *Client) ChampionSkins(ctx context.Context, version, championID string) ([]Skin, error) {
	fullURL := fmt.Sprintf("%s/cdn/%s/data/%s/champion/%s.json",
		c.baseURL, url.PathEscape(version), Locale, url.PathEscape(championID))

	var detail ChampionDetail
	if err := c.getJSON(ctx, fullURL, &detail); err != nil {
		return nil, err
	}

	champion, ok := detail.Data[championID]
	if !ok {
		return nil, fmt.Errorf("champion %s missing from its own detail file", championID)
	}
	return champion.Skins, nil
}

// Splash downloads the splash art of skin num of a champion.
func (c *Client) Splash(ctx context.Context, championID string, num int) ([]byte, error) {
	fullURL := fmt.Sprintf("%s/cdn/img/champion/splash/%s_%s.jpg",
		c.baseURL, url.PathEscape(championID), strconv.Itoa(num))

	resp, err := c.makeRequest(ctx, fullURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading splash: %w", err)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string, v any) error {
	resp, err := c.makeRequest(ctx, fullURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
