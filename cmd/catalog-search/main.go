package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/user/catalog-webhook/internal/adapter/chromedp_fetcher"
	"github.com/user/catalog-webhook/internal/adapter/goquery_extractor"
	"github.com/user/catalog-webhook/internal/adapter/httpfetch"
	"github.com/user/catalog-webhook/internal/entity"
	"github.com/user/catalog-webhook/internal/proxy"
	"github.com/user/catalog-webhook/internal/repository"
	"github.com/user/catalog-webhook/internal/usecase"
	"github.com/user/catalog-webhook/pkg/config"
	"github.com/user/catalog-webhook/pkg/logger"
	"github.com/user/catalog-webhook/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	app := &cli.Command{
		Name:      "catalog-search",
		Usage:     "Run one research catalog search and print the extracted records",
		ArgsUsage: "KEYWORDS...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "analyst",
				Usage: "Restrict results to an analyst (\"Any\" for no filter)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (0 for all)",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "fetcher",
				Usage: "Page fetcher: http or browser",
				Value: cfg.Fetcher,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Fetch timeout",
				Value: cfg.FetchTimeout,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print records as JSON",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runSearch(ctx, cfg, c, os.Stdout)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSearch(ctx context.Context, cfg *config.Config, c *cli.Command, out io.Writer) error {
	level := "warn"
	if c.Bool("debug") {
		level = "debug"
	}
	l, err := logger.New(level)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer l.Sync()

	agents, err := proxy.NewManager(cfg.Proxies, cfg.UserAgents)
	if err != nil {
		return fmt.Errorf("proxy configuration: %w", err)
	}

	var fetcher repository.PageFetcher
	switch c.String("fetcher") {
	case "browser":
		browser := chromedp_fetcher.NewChromedpFetcher(c.Duration("timeout"), agents, l)
		defer browser.Close()
		fetcher = browser
	case "http":
		fetcher = httpfetch.NewHTTPFetcher(c.Duration("timeout"), agents, l)
	default:
		return fmt.Errorf("unknown fetcher %q", c.String("fetcher"))
	}

	builder, err := usecase.NewQueryBuilder(cfg.SearchEndpoint, cfg.SearchParam)
	if err != nil {
		return err
	}
	extractor := goquery_extractor.NewExtractor(goquery_extractor.Selectors{
		Row:     cfg.RowSelector,
		Link:    cfg.LinkSelector,
		Analyst: cfg.AnalystSelector,
	}, l)
	searcher := usecase.NewSearchUseCase(builder, fetcher, extractor, metrics.New(prometheus.NewRegistry()), l)

	q := entity.SearchQuery{
		Keywords: entity.Keywords(c.Args().Slice()).Join(),
		Analyst:  c.String("analyst"),
		Limit:    c.Int("limit"),
	}
	result, err := searcher.Search(ctx, q)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}
	l.Debug("search finished", zap.String("url", result.SourceURL))

	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Records)
	}
	return printRecords(out, result)
}

func printRecords(out io.Writer, result *entity.SearchResult) error {
	fmt.Fprintf(out, "%s\n", result.SourceURL)
	if len(result.Records) == 0 {
		_, err := fmt.Fprintln(out, "No results.")
		return err
	}
	for i, rec := range result.Records {
		fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, rec.Title, rec.URL)
		if len(rec.Analysts) > 0 {
			fmt.Fprintf(out, "   by %s\n", strings.Join(rec.Analysts, ", "))
		}
	}
	return nil
}
