// Package feeds reads news items from an RSS aggregator that has already
// turned the feeds into JSON.
package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/parsing"
	"github.com/radixwiki/wiki/src/utils"
)

var ErrUnavailable = errors.New("Feed unavailable")

const (
	maxAttempts          = 2
	maxBodyBytes         = 4 << 20
	maxDescriptionLength = 280
)

type Item struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Image       string    `json:"image"`
	Source      string    `json:"source"`
	Date        time.Time `json:"-"`
	RawDate     string    `json:"date"`
	Description string    `json:"description"`
}

type response struct {
	Items []Item `json:"items"`
}

var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseResponse reads an aggregator response and cleans up its items: links
// and images must be http(s), descriptions are reduced to plain text, and
// items without a title or link are dropped.
func ParseResponse(body []byte, limit int) ([]Item, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var items []Item
	for _, item := range resp.Items {
		item.Title = strings.TrimSpace(parsing.PlainText(item.Title))
		item.Link = strings.TrimSpace(item.Link)
		if item.Title == "" || !isWebURL(item.Link) {
			continue
		}
		if !isWebURL(item.Image) {
			item.Image = ""
		}
		item.Source = strings.TrimSpace(item.Source)
		item.Description = utils.Truncate(parsing.PlainText(item.Description), maxDescriptionLength)
		item.Date = parseDate(item.RawDate)
		items = append(items, item)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func isWebURL(u string) bool {
	lower := strings.ToLower(strings.TrimSpace(u))
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

type Client struct {
	HTTP     *http.Client
	RetryMin time.Duration
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		RetryMin: 500 * time.Millisecond,
	}
}

// Fetch returns up to limit items from the aggregator at url.
func (c *Client) Fetch(ctx context.Context, url string, limit int) ([]Item, error) {
	if !isWebURL(url) {
		return nil, fmt.Errorf("%w: no feed address set", ErrUnavailable)
	}

	boff := backoff.Backoff{Min: c.RetryMin, Max: 5 * time.Second}
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := utils.SleepContext(ctx, boff.Duration()); err != nil {
				return nil, err
			}
		}
		body, retry, err := c.get(ctx, url)
		if err == nil {
			return ParseResponse(body, limit)
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, oops.New(err, "failed to build feed request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return nil, true, fmt.Errorf("feed returned %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("feed returned %d", res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}
