package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	natsadapter "github.com/samirrijal/tunitrip/internal/adapters/nats"
	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
	"github.com/samirrijal/tunitrip/internal/pkg/config"
	"github.com/samirrijal/tunitrip/internal/pkg/geospatial"
)

// parseLocation accepts a gazetteer city or a "lat,lon" pair.
func parseLocation(s string) (domain.LocationPoint, error) {
	if city, ok := domain.FindCity(s); ok {
		return city.Point(), nil
	}
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.LocationPoint{}, fmt.Errorf("unknown city %q (use a city name or lat,lon)", s)
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err := errors.Join(err1, err2); err != nil {
		return domain.LocationPoint{}, fmt.Errorf("invalid coordinates %q: %w", s, err)
	}
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		return domain.LocationPoint{}, fmt.Errorf("coordinates out of range: %q", s)
	}
	return domain.CustomLocation(p), nil
}

func parseLocations(args []string) ([]domain.LocationPoint, []domain.GeoPoint, error) {
	locs := make([]domain.LocationPoint, len(args))
	points := make([]domain.GeoPoint, len(args))
	for i, a := range args {
		lp, err := parseLocation(a)
		if err != nil {
			return nil, nil, err
		}
		locs[i], points[i] = lp, lp.Coords
	}
	return locs, points, nil
}

func citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the city gazetteer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return printJSON(cmd.OutOrStdout(), domain.Cities)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CITY\tLAT\tLON")
			for _, c := range domain.Cities {
				fmt.Fprintf(tw, "%s\t%.4f\t%.4f\n", c.Name, c.Location.Lat, c.Location.Lon)
			}
			return tw.Flush()
		},
	}
}

func vehiclesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "vehicles [query]",
		Short: "List or search the vehicle catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := loadServices()
			if err != nil {
				return err
			}
			var vehicles []domain.Vehicle
			if len(args) == 1 {
				vehicles, err = svc.vehicles.Search(cmd.Context(), args[0], limit)
			} else {
				vehicles, err = svc.vehicles.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), vehicles)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tVEHICLE\tENGINE\tFUEL\tL/100KM")
			for _, v := range vehicles {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\n", v.ID, v.DisplayName(), v.Engine, v.DefaultFuelType(), v.FuelConsumption.Combined)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum search results")
	return cmd
}

func pricesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Resolve current fuel prices (TND per liter)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := loadServices()
			if err != nil {
				return err
			}
			q := svc.prices.Resolve(cmd.Context())
			if asJSON {
				return printJSON(cmd.OutOrStdout(), q)
			}
			printQuote(cmd, q)
			return nil
		},
	}
}

func printQuote(cmd *cobra.Command, q domain.PriceQuote) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Diesel:   %.3f TND/L\n", q.Diesel)
	fmt.Fprintf(out, "Gasoline: %.3f TND/L\n", q.Gasoline)
	fmt.Fprintf(out, "As of:    %s\n", q.LastUpdated)
	if q.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", q.Warning)
	}
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <polyline>",
		Short: "Decode an encoded polyline into lat,lon pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := geospatial.DecodePolyline(args[0])
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				pts = [][2]float64{}
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), pts)
			}
			for _, p := range pts {
				fmt.Fprintf(cmd.OutOrStdout(), "%.5f,%.5f\n", p[0], p[1])
			}
			return nil
		},
	}
}

func routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <from> [via...] <to>",
		Short: "Road distance through the given points in order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, points, err := parseLocations(args)
			if err != nil {
				return err
			}
			_, svc, err := loadServices()
			if err != nil {
				return err
			}

			res := svc.routes.FetchRoute(cmd.Context(), points)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			var straight float64
			for i := 1; i < len(points); i++ {
				straight += points[i-1].DistanceKm(points[i])
			}
			out := cmd.OutOrStdout()
			if res == nil {
				fmt.Fprintf(out, "Road distance unavailable (straight line %.1f km)\n", straight)
				return nil
			}
			fmt.Fprintf(out, "Road distance: %.1f km via %s (straight line %.1f km)\n", res.TotalDistanceKm, res.Provider, straight)
			return nil
		},
	}
}

type quoteOptions struct {
	vehicleID  int
	fuelType   string
	distanceKm float64
	diesel     float64
	gasoline   float64
}

func quoteCmd() *cobra.Command {
	var opts quoteOptions

	cmd := &cobra.Command{
		Use:   "quote [<from> [via...] <to>]",
		Short: "Fuel cost of a trip for a catalog vehicle",
		Long: `Fuel cost of a trip. The distance is taken from --distance or, when
points are given, from the road route through them. Live prices are used
unless both --diesel and --gasoline are set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.vehicleID, "vehicle", "v", 0, "Catalog vehicle ID (required)")
	cmd.Flags().StringVar(&opts.fuelType, "fuel", "", "Fuel type override: diesel or gasoline")
	cmd.Flags().Float64VarP(&opts.distanceKm, "distance", "d", 0, "Trip distance in km")
	cmd.Flags().Float64Var(&opts.diesel, "diesel", 0, "Diesel price per liter")
	cmd.Flags().Float64Var(&opts.gasoline, "gasoline", 0, "Gasoline price per liter")
	_ = cmd.MarkFlagRequired("vehicle")
	return cmd
}

func runQuote(cmd *cobra.Command, args []string, opts quoteOptions) error {
	ft := domain.FuelType(opts.fuelType)
	if ft != "" && !ft.Valid() {
		return usecases.ErrInvalidFuelType
	}
	if opts.distanceKm <= 0 && len(args) < 2 {
		return errors.New("give --distance or at least two points")
	}

	_, svc, err := loadServices()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	v, err := svc.vehicles.GetByID(ctx, opts.vehicleID)
	if err != nil {
		return fmt.Errorf("vehicle %d: %w", opts.vehicleID, err)
	}

	distance := opts.distanceKm
	if distance <= 0 {
		_, points, err := parseLocations(args)
		if err != nil {
			return err
		}
		res := svc.routes.FetchRoute(ctx, points)
		if res == nil {
			return errors.New("road distance unavailable; retry later or pass --distance")
		}
		distance = res.TotalDistanceKm
	}

	prices := domain.FuelPrices{Diesel: opts.diesel, Gasoline: opts.gasoline}
	if !prices.Valid() {
		q := svc.prices.Resolve(ctx)
		if q.Warning != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s (prices as of %s)\n", q.Warning, q.LastUpdated)
		}
		prices = q.FuelPrices
	}

	cost := usecases.ComputeTripCost(distance, v, ft, prices)
	if cost == nil {
		return errors.New("no cost for this trip")
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), cost)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Vehicle:     %s (%s)\n", v.DisplayName(), v.Engine)
	fmt.Fprintf(out, "Distance:    %.1f km\n", cost.DistanceKm)
	fmt.Fprintf(out, "Consumption: %.1f L/100km\n", cost.ConsumptionL100)
	fmt.Fprintf(out, "Fuel:        %s at %.3f TND/L\n", cost.FuelType, cost.PricePerLiter)
	fmt.Fprintf(out, "Liters:      %.1f L\n", cost.LitersNeeded)
	fmt.Fprintf(out, "Cost:        %.2f TND\n", cost.FuelCost)
	return nil
}

func watchCmd() *cobra.Command {
	var (
		url     string
		durable string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print quote and price events as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				cfg, err := config.Load("tunitrip-cli")
				if err != nil {
					return err
				}
				url = cfg.NATS.URL
			}
			if url == "" {
				return errors.New("no NATS server: set --nats or TUNITRIP_NATS_URL")
			}

			sub, err := natsadapter.NewSubscriber(url, durable)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			err = sub.SubscribeQuotes(ctx, func(ctx context.Context, ev *ports.QuoteEvent) error {
				if asJSON {
					return printJSON(out, ev)
				}
				_, err := fmt.Fprintf(out, "%s quote   vehicle=%d %.1f km %s %.2f TND\n",
					ev.At.Format("15:04:05"), ev.VehicleID, ev.Cost.DistanceKm, ev.Cost.FuelType, ev.Cost.FuelCost)
				return err
			})
			if err != nil {
				return err
			}
			err = sub.SubscribePrices(ctx, func(ctx context.Context, q *domain.PriceQuote) error {
				if asJSON {
					return printJSON(out, q)
				}
				_, err := fmt.Fprintf(out, "%s prices  diesel=%.3f gasoline=%.3f fallback=%v\n",
					q.LastUpdated, q.Diesel, q.Gasoline, q.Degraded())
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "watching, press Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "nats", "", "NATS server URL (defaults to nats.url from config)")
	cmd.Flags().StringVar(&durable, "durable", "", "Durable consumer name; empty receives only new events")
	return cmd
}
