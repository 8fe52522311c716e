package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcanaland/proxymancer/internal/cache"
	"github.com/arcanaland/proxymancer/internal/card"
	"github.com/arcanaland/proxymancer/internal/config"
	"github.com/arcanaland/proxymancer/internal/decklist"
	"github.com/arcanaland/proxymancer/internal/logging"
	"github.com/arcanaland/proxymancer/internal/pdfwriter"
	"github.com/arcanaland/proxymancer/internal/proxy"
	"github.com/arcanaland/proxymancer/internal/resolver"
	"github.com/arcanaland/proxymancer/internal/scryfall"
)

var (
	cfg    *config.Config
	logger = logging.NewNop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "proxymancer [card names...]",
	Short: "Print Magic: The Gathering proxy sheets",
	Long: `Proxymancer downloads card images from Scryfall, caches them locally and lays
them out nine to a page on US Letter paper, ready to print and cut.

Cards can be given on the command line, in a decklist file or in a Moxfield
CSV export. Prefix an entry with a count to print several copies.

Examples:
  proxymancer "4x Lightning Bolt" "Counterspell"
  proxymancer -f burn.txt -o burn.pdf
  proxymancer --csv moxfield.csv --cut-guides`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runPrint,
}

func init() {
	flags := RootCmd.Flags()
	flags.StringP("file", "f", "", "Decklist file, one entry per line")
	flags.String("csv", "", "Moxfield CSV export")
	flags.StringP("output", "o", "", "Output PDF path (default from config, proxies.pdf)")
	flags.Int("dpi", 0, "Image resolution in the PDF (default from config, 300)")
	flags.Bool("no-cache", false, "Neither read nor write the image cache")
	flags.Bool("fuzzy", false, "Use fuzzy card name matching")
	flags.Bool("cut-guides", false, "Draw cut guides along the card edges")

	persistent := RootCmd.PersistentFlags()
	persistent.String("config", "", "Config file (default $XDG_CONFIG_HOME/proxymancer/config.toml)")
	persistent.String("cache-dir", "", "Image cache directory")
	persistent.String("log-level", "", "Log level (debug, info, warn, error)")
	persistent.String("log-format", "", "Log format (console, json)")
}

// setup loads the config, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	configPath := configFilePath(cmd)

	loaded, err := config.LoadConfigFrom(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir, _ = flags.GetString("cache-dir")
	}

	logger, err = logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	logger.Debug("config loaded", slog.String("path", configPath))
	return nil
}

func runPrint(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.DefaultOutput, _ = flags.GetString("output")
	}
	if flags.Changed("dpi") {
		cfg.DPI, _ = flags.GetInt("dpi")
	}
	if flags.Changed("fuzzy") {
		cfg.Fuzzy, _ = flags.GetBool("fuzzy")
	}
	if flags.Changed("cut-guides") {
		cfg.CutGuides, _ = flags.GetBool("cut-guides")
	}
	noCache, _ := flags.GetBool("no-cache")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	deckFile, _ := flags.GetString("file")
	csvFile, _ := flags.GetString("csv")
	requests, err := collectRequests(deckFile, csvFile, args)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		cmd.Println(cmd.UsageString())
		return proxy.ErrNoCards
	}

	res, err := newResolver(noCache)
	if err != nil {
		return err
	}

	r, g, b, _ := cfg.GuideColor()
	bar := newProgress(cmd.ErrOrStderr(), len(requests))
	opts := proxy.Options{
		Output: cfg.DefaultOutput,
		PDF: pdfwriter.Options{
			DPI:        cfg.DPI,
			CutGuides:  cfg.CutGuides,
			GuideColor: [3]uint8{r, g, b},
			Title:      documentTitle(deckFile, csvFile),
		},
		OnResolved: bar.step,
	}

	summary, err := proxy.Run(cmd.Context(), requests, res, opts, logger)
	bar.finish()
	if summary != nil {
		renderSummary(cmd.OutOrStdout(), summary, err == nil)
	}
	return err
}

// collectRequests gathers entries from the decklist file, the CSV export
// and the command line, in that order
func collectRequests(deckFile, csvFile string, args []string) ([]card.Request, error) {
	var requests []card.Request

	if deckFile != "" {
		reqs, err := decklist.LoadFile(deckFile)
		if err != nil {
			return nil, err
		}
		requests = append(requests, reqs...)
	}

	if csvFile != "" {
		reqs, err := decklist.LoadCSV(csvFile)
		if err != nil {
			return nil, err
		}
		requests = append(requests, reqs...)
	}

	reqs, err := decklist.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	return append(requests, reqs...), nil
}

// newResolver wires the Scryfall client and, unless disabled, the image cache
func newResolver(noCache bool) (*resolver.Resolver, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	var store resolver.Store
	if !noCache {
		c, err := cache.New(cfg.ResolvedCacheDir(), logger)
		if err != nil {
			return nil, err
		}
		store = c
	}

	return resolver.New(client, store, resolver.Options{
		Fuzzy:      cfg.Fuzzy,
		ImageSizes: cfg.ImageSizes,
	}, logger), nil
}

func newClient() (*scryfall.Client, error) {
	return scryfall.New(cfg.APIBaseURL,
		scryfall.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
		scryfall.WithRequestInterval(cfg.RequestInterval()),
		scryfall.WithUserAgent(cfg.UserAgent),
		scryfall.WithLogger(logger),
	)
}

func documentTitle(deckFile, csvFile string) string {
	for _, path := range []string{deckFile, csvFile} {
		if path != "" {
			return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
	}
	return "Proxies"
}

// ExitCode maps an error returned by RootCmd to a process exit status
func ExitCode(err error) int {
	var perr *decklist.ParseError
	var ioErr *pdfwriter.IOError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &perr):
		return 2
	case errors.As(err, &ioErr):
		return 3
	case errors.Is(err, proxy.ErrNothingResolved):
		return 4
	default:
		return 1
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
