package prices

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/radixwiki/wiki/src/logging"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/utils"
)

var (
	// ErrUnavailable covers every way the price oracle can fail us. Its
	// message is shown to readers as-is.
	ErrUnavailable = errors.New("Price unavailable")
	ErrNoAddress   = errors.New("No resource address set")
)

const (
	maxAttempts   = 3
	maxBodyBytes  = 1 << 20
	clientTimeout = 10 * time.Second

	DefaultPollInterval = time.Minute
)

type Quote struct {
	ResourceAddress string    `json:"resourceAddress"`
	Symbol          string    `json:"symbol"`
	Name            string    `json:"name"`
	USD             float64   `json:"usd"`
	USD24hAgo       float64   `json:"usd24h"`
	FetchedAt       time.Time `json:"fetchedAt"`
}

// Change24h is the percentage change over the last day, or 0 when the
// oracle didn't report a price from a day ago.
func (q *Quote) Change24h() float64 {
	if q.USD24hAgo == 0 {
		return 0
	}
	return (q.USD - q.USD24hAgo) / q.USD24hAgo * 100
}

func (q *Quote) DisplaySymbol() string {
	if q.Symbol != "" {
		return strings.ToUpper(q.Symbol)
	}
	return q.Name
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type tokenResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  struct {
		USD struct {
			Now       flexFloat `json:"now"`
			DayBefore flexFloat `json:"24h"`
		} `json:"usd"`
	} `json:"price"`
}

// ParseTokenResponse reads an ociswap token response. A missing or zero
// price is ErrUnavailable.
func ParseTokenResponse(address string, body []byte) (*Quote, error) {
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	now := float64(resp.Price.USD.Now)
	if now <= 0 {
		return nil, ErrUnavailable
	}
	return &Quote{
		ResourceAddress: address,
		Symbol:          resp.Symbol,
		Name:            resp.Name,
		USD:             now,
		USD24hAgo:       float64(resp.Price.USD.DayBefore),
		FetchedAt:       time.Now().UTC(),
	}, nil
}

type Client struct {
	BaseUrl string
	HTTP    *http.Client
	Cache   *Cache

	// Minimum wait between retries; the wait doubles each attempt.
	RetryMin time.Duration
}

func NewClient(baseUrl string, cache *Cache) *Client {
	return &Client{
		BaseUrl:  strings.TrimRight(baseUrl, "/"),
		HTTP:     &http.Client{Timeout: clientTimeout},
		Cache:    cache,
		RetryMin: 250 * time.Millisecond,
	}
}

// Quote returns the current price of a resource, from the cache when it is
// fresh enough.
func (c *Client) Quote(ctx context.Context, address string) (*Quote, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoAddress
	}
	if q, ok := c.Cache.Get(ctx, address); ok {
		return q, nil
	}
	q, err := c.Fetch(ctx, address)
	if err != nil {
		return nil, err
	}
	c.Cache.Set(ctx, q)
	return q, nil
}

// Fetch always asks the oracle, retrying transient failures.
func (c *Client) Fetch(ctx context.Context, address string) (*Quote, error) {
	boff := backoff.Backoff{
		Min: c.RetryMin,
		Max: 5 * time.Second,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := utils.SleepContext(ctx, boff.Duration()); err != nil {
				return nil, err
			}
		}

		q, retry, err := c.fetchOnce(ctx, address)
		if err == nil {
			return q, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
		logging.ExtractLogger(ctx).Debug().
			Err(err).
			Str("address", address).
			Int("attempt", attempt+1).
			Msg("retrying price fetch")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !errors.Is(lastErr, ErrUnavailable) {
		lastErr = fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, address string) (q *Quote, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseUrl+"/tokens/"+url.PathEscape(address), nil)
	if err != nil {
		return nil, false, oops.New(err, "failed to build price request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, true, err
	}
	if res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("price oracle returned %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%w: oracle returned %d", ErrUnavailable, res.StatusCode)
	}

	q, err = ParseTokenResponse(address, body)
	return q, false, err
}
