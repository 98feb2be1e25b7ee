package prices

import (
	"context"
	"time"

	"github.com/radixwiki/wiki/src/jobs"
	"github.com/radixwiki/wiki/src/utils"
)

// AddressLister returns every resource address the wiki displays a price for.
type AddressLister func(ctx context.Context) ([]string, error)

// RunCacheWarmer refreshes the cached quote of every listed address each
// interval, so page views rarely wait on the oracle. It does nothing
// without a cache.
func RunCacheWarmer(client *Client, list AddressLister, interval time.Duration) *jobs.Job {
	if !client.Cache.IsAvailable() {
		return jobs.Noop()
	}

	return jobs.Run("price cache warmer", func(job *jobs.Job) {
		ticker := utils.NewInstaTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-job.Canceled():
				return
			case <-ticker.C:
				warmOnce(job, client, list)
			}
		}
	})
}

func warmOnce(job *jobs.Job, client *Client, list AddressLister) {
	addresses, err := list(job.Ctx)
	if err != nil {
		job.Logger.Error().Err(err).Msg("failed to list price addresses")
		return
	}

	refreshed := 0
	for _, address := range addresses {
		if job.Ctx.Err() != nil {
			return
		}
		q, err := client.Fetch(job.Ctx, address)
		if err != nil {
			job.Logger.Debug().Err(err).Str("address", address).Msg("could not refresh price")
			continue
		}
		client.Cache.Set(job.Ctx, q)
		refreshed++
	}
	job.Logger.Debug().Int("refreshed", refreshed).Int("total", len(addresses)).Msg("warmed price cache")
}
