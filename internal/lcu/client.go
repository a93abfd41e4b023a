package lcu

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tristan-derez/league-skin-picker/internal/storage"
)

const (
	currentSummonerPath = "/lol-summoner/v1/current-summoner"
	currentChampionPath = "/lol-champ-select-legacy/v1/current-champion"
	championsPath       = "/lol-champions/v1/inventories/%d/champions-minimal"
)

// ChampionStore persists the champion catalog between runs.
type ChampionStore interface {
	HasChampions() bool
	LoadChampions() ([]storage.ChampionRecord, error)
	SaveChampions([]storage.ChampionRecord) error
}

// Client talks to the League client's local HTTPS API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu      sync.RWMutex
	aliases map[int]string
}

type Option func(*Client)

// WithBaseURL replaces https://127.0.0.1:<port>, for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: "https://127.0.0.1:" + creds.Port,
		token:   creds.Token,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				// the client serves a self-signed certificate on loopback
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		aliases: map[int]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WaitReady blocks until the client answers, retrying with exponential backoff
// while it is still starting.
func (c *Client) WaitReady(ctx context.Context) (int64, error) {
	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.InitialInterval = 500 * time.Millisecond
	backoffStrategy.MaxInterval = 5 * time.Second
	backoffStrategy.MaxElapsedTime = 2 * time.Minute

	var summonerID int64
	operation := func() error {
		id, err := c.CurrentSummonerID(ctx)
		if err != nil {
			if IsRetryable(err) {
				slog.Debug("league client not ready yet", "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		summonerID = id
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return 0, fmt.Errorf("league client did not become ready: %w", err)
	}
	return summonerID, nil
}

// CurrentSummonerID returns the id of the logged-in summoner.
func (c *Client) CurrentSummonerID(ctx context.Context) (int64, error) {
	var summoner struct {
		SummonerID int64 `json:"summonerId"`
	}
	if err := c.getJSON(ctx, currentSummonerPath, &summoner); err != nil {
		return 0, err
	}
	return summoner.SummonerID, nil
}

// CurrentChampionID returns the champion locked in the current champion select,
// or 0 when there is none. The client answers 404 outside of champion select.
func (c *Client) CurrentChampionID(ctx context.Context) (int, error) {
	var id int
	if err := c.getJSON(ctx, currentChampionPath, &id); err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

// Champions lists every champion the summoner can see, with its alias.
func (c *Client) Champions(ctx context.Context, summonerID int64) ([]storage.ChampionRecord, error) {
	var champions []storage.ChampionRecord
	if err := c.getJSON(ctx, fmt.Sprintf(championsPath, summonerID), &champions); err != nil {
		return nil, err
	}
	return champions, nil
}

// EnsureChampionCatalog writes the champion catalog to store on first run, then
// loads it into memory for ChampionAlias.
func (c *Client) EnsureChampionCatalog(ctx context.Context, store ChampionStore, summonerID int64) error {
	if !store.HasChampions() {
		champions, err := c.Champions(ctx, summonerID)
		if err != nil {
			return fmt.Errorf("fetch champion catalog: %w", err)
		}
		if err := store.SaveChampions(champions); err != nil {
			return fmt.Errorf("save champion catalog: %w", err)
		}
		slog.Info("champion catalog created", "champions", len(champions))
	}

	champions, err := store.LoadChampions()
	if err != nil {
		return fmt.Errorf("load champion catalog: %w", err)
	}
	c.SetChampions(champions)
	return nil
}

// SetChampions replaces the in-memory alias table.
func (c *Client) SetChampions(champions []storage.ChampionRecord) {
	aliases := make(map[int]string, len(champions))
	for _, champ := range champions {
		aliases[champ.ID] = champ.Alias
	}

	c.mu.Lock()
	c.aliases = aliases
	c.mu.Unlock()
}

// ChampionAlias returns the alias of champion id. Unknown ids and empty aliases
// report false.
func (c *Client) ChampionAlias(_ context.Context, id int) (string, bool, error) {
	c.mu.RLock()
	alias, ok := c.aliases[id]
	c.mu.RUnlock()

	if !ok || alias == "" {
		return "", false, nil
	}
	return alias, true, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.SetBasicAuth("riot", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Path: path, Message: string(message)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
