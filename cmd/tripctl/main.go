package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samirrijal/tunitrip/internal/adapters/catalog"
	"github.com/samirrijal/tunitrip/internal/adapters/googlemaps"
	"github.com/samirrijal/tunitrip/internal/adapters/osrm"
	"github.com/samirrijal/tunitrip/internal/adapters/scraper"
	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
	"github.com/samirrijal/tunitrip/internal/pkg/config"
	"github.com/samirrijal/tunitrip/internal/pkg/logging"
)

var (
	asJSON   bool
	logLevel string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tripctl",
		Short: "Fuel cost estimates for road trips across Tunisia",
		Long: `tripctl resolves road distances and current fuel prices and turns them
into a trip cost for a catalog vehicle. Points are gazetteer cities
("Sfax", "gabes") or "lat,lon" pairs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}

	root.PersistentFlags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(citiesCmd())
	root.AddCommand(vehiclesCmd())
	root.AddCommand(pricesCmd())
	root.AddCommand(decodeCmd())
	root.AddCommand(routeCmd())
	root.AddCommand(quoteCmd())
	root.AddCommand(watchCmd())
	return root
}

// services builds the use cases the commands share. Nothing here needs a
// database, cache or broker.
type services struct {
	routes   *usecases.RouteService
	prices   *usecases.FuelPriceService
	vehicles *usecases.VehicleService
}

func loadServices() (*config.Config, *services, error) {
	cfg, err := config.Load("tunitrip-cli")
	if err != nil {
		return nil, nil, err
	}

	var provider ports.RouteProvider
	if cfg.Routing.Provider == "google" {
		baseURL := cfg.Routing.BaseURL
		if baseURL == osrm.DefaultBaseURL {
			baseURL = ""
		}
		if provider, err = googlemaps.New(cfg.Routing.GoogleAPIKey, baseURL, cfg.Routing.Timeout); err != nil {
			return nil, nil, err
		}
	} else {
		provider = osrm.New(cfg.Routing.BaseURL, cfg.Routing.Timeout)
	}

	var repo *catalog.Repo
	if cfg.Catalog.Path != "" {
		repo, err = catalog.Load(cfg.Catalog.Path)
	} else {
		repo, err = catalog.Default()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("vehicle catalog: %w", err)
	}

	source := scraper.New(cfg.Prices.SourceURL, cfg.Prices.Country, cfg.Prices.UserAgent, cfg.Prices.Timeout)
	return cfg, &services{
		routes:   usecases.NewRouteService(provider, nil),
		prices:   usecases.NewFuelPriceService(source, nil),
		vehicles: usecases.NewVehicleService(repo, nil),
	}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
