package prices

import (
	"context"
	"time"

	"github.com/radixwiki/wiki/src/utils"
)

type Update struct {
	Quote *Quote
	Err   error
}

// Watch fetches a quote immediately and then every interval until ctx is
// done, sending each result on the returned channel. Fetches run one at a
// time, so updates arrive in the order they were requested. The channel is
// closed when watching stops.
func (c *Client) Watch(ctx context.Context, address string, interval time.Duration) <-chan Update {
	updates := make(chan Update)
	go func() {
		defer close(updates)

		ticker := utils.NewInstaTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			// Live updates bypass the cache.
			q, err := c.Fetch(ctx, address)
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				c.Cache.Set(ctx, q)
			}

			select {
			case <-ctx.Done():
				return
			case updates <- Update{Quote: q, Err: err}:
			}
		}
	}()
	return updates
}
