package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wayfind/internal/clients/google"
	"wayfind/internal/clients/ipapi"
	"wayfind/internal/config"
	"wayfind/internal/handler"
	"wayfind/internal/lib/geo"
	"wayfind/internal/render"
	"wayfind/internal/services"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "route":
		err = handleRoute(args)
	case "search":
		err = handleSearch(args)
	case "resolve":
		err = handleResolve(args)
	case "locate":
		err = handleLocate(args)
	case "config":
		err = handleConfig(args)
	case "serve":
		err = handleServe(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wayfind - search Google Places along travel routes

Usage:
  wayfind route    --query Q --from A --to B [--mode DRIVE] [--radius 1000] [--waypoints 5] [--limit 5]
  wayfind search   --query Q [--lat L --lng L | --auto-locate] [--radius 1000] [--limit 10]
  wayfind resolve  --location TEXT
  wayfind locate
  wayfind config   set-location|clear-location|show [flags]
  wayfind serve    [--port 8080]

Common flags: --api-key KEY --timeout SECONDS --json --verbose

Environment:
  GOOGLE_PLACES_API_KEY    API key for Google Places and Routes (required)`)
}

// commonFlags are shared across the network-facing subcommands.
type commonFlags struct {
	apiKey   *string
	timeout  *int
	jsonOut  *bool
	verbose  *bool
	language *string
	region   *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		apiKey:   fs.String("api-key", "", "Google API key (or set GOOGLE_PLACES_API_KEY)"),
		timeout:  fs.Int("timeout", 0, "HTTP timeout in seconds"),
		jsonOut:  fs.Bool("json", false, "Output as JSON"),
		verbose:  fs.Bool("verbose", false, "Enable debug logging"),
		language: fs.String("lang", "", "BCP-47 language code (e.g. en, de, ja)"),
		region:   fs.String("region", "", "CLDR region code (e.g. US, AT, JP)"),
	}
}

func (f *commonFlags) logger() *zap.Logger {
	if *f.verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	return zap.NewNop()
}

func (f *commonFlags) client(cfg *config.Config) (*google.Client, error) {
	apiKey := *f.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}

	timeout := cfg.TimeoutSeconds
	if *f.timeout > 0 {
		timeout = *f.timeout
	}

	return google.NewClient(apiKey, google.WithTimeout(time.Duration(timeout)*time.Second))
}

func handleRoute(args []string) error {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	query := fs.String("query", "", "What to search for along the route")
	from := fs.String("from", "", "Origin address or place name")
	to := fs.String("to", "", "Destination address or place name")
	mode := fs.String("mode", "DRIVE", "Travel mode: DRIVE, WALK, BICYCLE, TWO_WHEELER, TRANSIT")
	radius := fs.Float64("radius", 1000, "Search radius around each waypoint in meters")
	waypoints := fs.Int("waypoints", 5, "Number of waypoints to sample along the route")
	limit := fs.Int("limit", 5, "Maximum results per waypoint")
	common := addCommonFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := common.client(cfg)
	if err != nil {
		return err
	}
	logger := common.logger()
	defer logger.Sync()

	travelMode, err := google.ParseTravelMode(*mode)
	if err != nil {
		return err
	}

	pipeline := services.NewRouteSearcher(client, client, client, logger)
	result, err := pipeline.Run(context.Background(), services.RouteSearchRequest{
		Query:            *query,
		From:             *from,
		To:               *to,
		Mode:             travelMode,
		RadiusMeters:     *radius,
		WaypointCount:    *waypoints,
		PerWaypointLimit: *limit,
		Language:         *common.language,
		Region:           *common.region,
	})
	if err != nil {
		return err
	}

	if *common.jsonOut {
		return render.JSON(os.Stdout, result)
	}
	render.RouteSearch(os.Stdout, result)
	return nil
}

func handleSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("query", "", "Search query")
	includedType := fs.String("type", "", "Filter by place type (e.g. restaurant, cafe)")
	minRating := fs.Float64("min-rating", 0, "Minimum rating (0.0-5.0)")
	priceLevels := fs.String("price-level", "", "Comma-separated price levels (0=Free .. 4=$$$$)")
	openNow := fs.Bool("open-now", false, "Only places that are currently open")
	lat := fs.Float64("lat", 0, "Latitude for location bias")
	lng := fs.Float64("lng", 0, "Longitude for location bias")
	radius := fs.Float64("radius", 0, "Radius in meters for location bias")
	limit := fs.Int("limit", 10, "Maximum number of results (1-20)")
	autoLocate := fs.Bool("auto-locate", false, "Fall back to IP geolocation for location bias")
	common := addCommonFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := common.client(cfg)
	if err != nil {
		return err
	}

	center, biasRadius, err := locationBias(fs, cfg, *lat, *lng, *radius, *autoLocate)
	if err != nil {
		return err
	}

	levels, err := parsePriceLevels(*priceLevels)
	if err != nil {
		return err
	}

	resp, err := client.SearchText(context.Background(), google.SearchRequest{
		Query:        *query,
		IncludedType: *includedType,
		MinRating:    *minRating,
		PriceLevels:  levels,
		OpenNow:      *openNow,
		Center:       center,
		RadiusMeters: biasRadius,
		Limit:        *limit,
		Language:     *common.language,
		Region:       *common.region,
	})
	if err != nil {
		return err
	}

	if *common.jsonOut {
		return render.JSON(os.Stdout, resp)
	}
	render.Places(os.Stdout, resp.Places)
	return nil
}

// locationBias resolves the bias center by priority: explicit flags, saved
// default location, then IP geolocation if requested.
func locationBias(fs *flag.FlagSet, cfg *config.Config, lat, lng, radius float64, autoLocate bool) (*geo.Point, float64, error) {
	latSet, lngSet := false, false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			latSet = true
		case "lng":
			lngSet = true
		}
	})

	if radius == 0 {
		radius = cfg.DefaultRadius()
	}

	if latSet && lngSet {
		return &geo.Point{Latitude: lat, Longitude: lng}, radius, nil
	}
	if dlat, dlng, ok := cfg.DefaultLocation(); ok {
		return &geo.Point{Latitude: dlat, Longitude: dlng}, radius, nil
	}
	if autoLocate {
		loc, err := ipapi.NewClient().Locate(context.Background())
		if err != nil {
			return nil, 0, err
		}
		fmt.Fprintf(os.Stderr, "Using IP-based location: %s\n", loc.Description)
		return &loc.Point, radius, nil
	}
	return nil, 0, nil
}

func parsePriceLevels(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	names := []string{
		"PRICE_LEVEL_FREE",
		"PRICE_LEVEL_INEXPENSIVE",
		"PRICE_LEVEL_MODERATE",
		"PRICE_LEVEL_EXPENSIVE",
		"PRICE_LEVEL_VERY_EXPENSIVE",
	}
	var levels []string
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 4 {
			return nil, fmt.Errorf("invalid price level %q: must be 0-4", part)
		}
		levels = append(levels, names[n])
	}
	return levels, nil
}

func handleResolve(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	location := fs.String("location", "", "Address or place name to resolve")
	common := addCommonFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := common.client(cfg)
	if err != nil {
		return err
	}

	point, err := client.Resolve(context.Background(), *location, *common.language, *common.region)
	if err != nil {
		return err
	}

	if *common.jsonOut {
		return render.JSON(os.Stdout, point)
	}
	fmt.Printf("%s -> %.5f, %.5f\n", *location, point.Latitude, point.Longitude)
	return nil
}

func handleLocate(args []string) error {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	fs.Parse(args)

	loc, err := ipapi.NewClient().Locate(context.Background())
	if err != nil {
		return err
	}

	if *jsonOut {
		return render.JSON(os.Stdout, loc)
	}
	fmt.Printf("%s (%.5f, %.5f)\n", loc.Description, loc.Point.Latitude, loc.Point.Longitude)
	return nil
}

func handleConfig(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: wayfind config set-location|clear-location|show")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch args[0] {
	case "set-location":
		fs := flag.NewFlagSet("config set-location", flag.ExitOnError)
		lat := fs.Float64("lat", 0, "Default latitude")
		lng := fs.Float64("lng", 0, "Default longitude")
		radius := fs.Float64("radius", 0, "Default radius in meters")
		label := fs.String("label", "", "Human-readable label")
		fs.Parse(args[1:])

		var r *float64
		if *radius > 0 {
			r = radius
		}
		cfg.SetLocation(*lat, *lng, r, *label)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Default location saved to %s\n", config.Path())
		return nil

	case "clear-location":
		cfg.ClearLocation()
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println("Default location cleared.")
		return nil

	case "show":
		fmt.Printf("Config file: %s\n", config.Path())
		if lat, lng, ok := cfg.DefaultLocation(); ok {
			fmt.Printf("Default location: %.5f, %.5f (radius %.0fm)\n", lat, lng, cfg.DefaultRadius())
			if cfg.Location.Label != "" {
				fmt.Printf("Label: %s\n", cfg.Location.Label)
			}
		} else {
			fmt.Println("No default location set.")
		}
		return nil
	}

	return fmt.Errorf("unknown config subcommand: %s", args[0])
}

func handleServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 0, "Port to listen on")
	common := addCommonFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := common.client(cfg)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	listenPort := cfg.Server.Port
	if *port > 0 {
		listenPort = *port
	}

	pipeline := services.NewRouteSearcher(client, client, client, logger)
	h := handler.NewRouteSearchHandler(pipeline, client, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	h.RegisterRoutes(router)

	addr := fmt.Sprintf(":%d", listenPort)
	logger.Info("wayfind server starting", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
