package website

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/radixwiki/wiki/src/assets"
	"github.com/radixwiki/wiki/src/auth"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/feeds"
	"github.com/radixwiki/wiki/src/jobs"
	"github.com/radixwiki/wiki/src/logging"
	"github.com/radixwiki/wiki/src/perf"
	"github.com/radixwiki/wiki/src/prices"
	"github.com/radixwiki/wiki/src/render"
	"github.com/radixwiki/wiki/src/templates"
	"github.com/radixwiki/wiki/src/wikidata"
	"github.com/spf13/cobra"
)

var WebsiteCommand = &cobra.Command{
	Use:   "wiki",
	Short: "Run the wiki website",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)
		logging.Info().Str("env", string(config.Config.Env)).Msg("Starting the wiki")

		templates.Init()

		var wg sync.WaitGroup
		ctx := context.Background()

		conn := db.NewConnPool(ctx)
		perfCollector, perfCollectorJob := perf.RunPerfCollector()

		redisClient := prices.NewRedisClient(ctx, config.Config.Redis)
		priceClient := prices.NewClient(config.Config.Prices.OciswapBaseUrl, prices.NewCache(redisClient, config.Config.Prices.CacheTTL))

		var assetStore *assets.Store
		if config.Config.S3.Bucket != "" {
			var err error
			assetStore, err = assets.NewStore(ctx, config.Config.S3)
			if err != nil {
				logging.Error().Err(err).Msg("Object storage is misconfigured; uploads are disabled")
			}
		} else {
			logging.Warn().Msg("No object storage bucket configured; uploads are disabled")
		}

		verifier := auth.NewVerifier(config.Config.Auth.JWTSecret, config.Config.Auth.CookieName)
		if !verifier.Enabled() {
			logging.Warn().Msg("No JWT secret configured; everyone will be anonymous")
		}

		services := &Services{
			Verifier: verifier,
			Renderer: render.NewRenderer(render.Sources{
				Pages:  dbPageSource{conn: conn},
				Prices: priceClient,
				Feeds:  feeds.NewClient(config.Config.Feeds.Timeout),
			}),
			Prices:            priceClient,
			Assets:            assetStore,
			PricePollInterval: config.Config.Prices.PollInterval,
		}

		// Start background jobs
		wg.Add(1)
		backgroundJobs := jobs.Jobs{
			perfCollectorJob,
			prices.RunCacheWarmer(priceClient, func(ctx context.Context) ([]string, error) {
				return wikidata.FetchAssetPriceAddresses(ctx, conn)
			}, config.Config.Prices.PollInterval),
		}

		// Create HTTP server
		wg.Add(1)
		server := http.Server{
			Addr:    config.Config.Addr,
			Handler: NewWebsiteRoutes(conn, perfCollector, services),
		}
		go func() {
			logging.Info().Str("addr", config.Config.Addr).Msg("Serving the website")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
			// The wg.Done() happens in the shutdown logic below.
		}()

		// Start up the private HTTP server for pprof and the perf report. Because
		// it uses the default mux, and we import pprof, it will automatically
		// have all the pprof routes.
		if config.Config.PrivateAddr != "" {
			http.Handle("/debug/perf", perfReportHandler(perfCollector))
			go func() {
				// We don't bother to gracefully shut this down.
				log.Println(http.ListenAndServe(config.Config.PrivateAddr, nil))
			}()
		}

		// Wait for SIGINT in the background and trigger graceful shutdown
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		go func() {
			<-signals // First SIGINT (start shutdown)
			logging.Info().Msg("Shutting down the website")

			const timeout = 10 * time.Second

			go func() {
				logging.Info().Msg("Shutting down background jobs...")
				unfinished := backgroundJobs.CancelAndWait(timeout)
				if len(unfinished) == 0 {
					logging.Info().Msg("Background jobs closed gracefully")
				} else {
					logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
				}
				wg.Done()
			}()

			// Gracefully shut down the HTTP server. Open price sockets are
			// hijacked, so Shutdown doesn't wait for them.
			go func() {
				timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				err := server.Shutdown(timeoutCtx)
				if err != nil {
					logging.Warn().Err(err).Msg("Server did not shut down gracefully")
				}
				wg.Done()
			}()

			<-signals // Second SIGINT (force quit)
			logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the website")
			os.Exit(1)
		}()

		// Wait for all of the above to finish, then exit
		wg.Wait()

		conn.Close()
		if redisClient != nil {
			redisClient.Close()
		}
	},
}
