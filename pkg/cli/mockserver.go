package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/metrics"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/mockapi"
)

// mockHandler mounts the fixture API next to its /metrics endpoint
func mockHandler(apiKey string, count int, seed int64) http.Handler {
	reg := metrics.NewRegistry()
	srv := mockapi.New(mockapi.Options{
		APIKey: apiKey,
		Store:  mockapi.NewStore(mockapi.SeedReviews(count, seed)),
	})

	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler(reg))
	r.Mount("/", srv)
	return r
}

func newMockServerCmd(a *app) *cobra.Command {
	var (
		addr  string
		count int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a fixture reviews API for offline use",
		Example: `  rc mock-server --addr :8000
  rc --base-url http://localhost:8000 list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.For("mock-server")
			srv := &http.Server{
				Addr:              addr,
				Handler:           mockHandler(a.cfg.API.APIKey, count, seed),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Fixture API with %d reviews listening on %s (X-API-Key: %s)\n", count, addr, a.cfg.API.APIKey)
			log.Info().Str("addr", addr).Int("reviews", count).Msg("fixture API listening")

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return NewCLIError("fixture API failed", "Is "+addr+" already in use? Try --addr", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			log.Info().Msg("shutting down fixture API")
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	cmd.Flags().IntVar(&count, "count", 97, "number of generated reviews")
	cmd.Flags().Int64Var(&seed, "seed", 1, "dataset seed")
	return cmd
}
