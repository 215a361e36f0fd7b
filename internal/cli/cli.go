package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/covid19-scraping/internal/config"
	"github.com/pfrederiksen/covid19-scraping/internal/convert"
	"github.com/pfrederiksen/covid19-scraping/internal/document"
	"github.com/pfrederiksen/covid19-scraping/internal/fetcher"
	"github.com/pfrederiksen/covid19-scraping/internal/logger"
	"github.com/pfrederiksen/covid19-scraping/internal/storage"
	"github.com/pfrederiksen/covid19-scraping/internal/summary"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig     string
	flagVerbose    bool
	flagPath       string
	flagType       string
	flagSave       bool
	flagFormat     string
	flagHead       int
	flagOut        string
	flagLastUpdate string
	flagSet        map[string]int

	cfg *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covid19-scraping",
		Short: "Fetch and normalize published COVID-19 statistics",
		Long: `Fetches COVID-19 report files (xlsx/pdf) linked from the prefecture's
statistics pages and provides helpers to turn their contents into a summary tree.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging (including HTTP traces)")

	cmd.AddCommand(
		newFetchCmd(),
		newSummaryCmd(),
		newDateCmd(),
		newNumbersCmd(),
		newWeekdayCmd(),
	)

	return cmd
}

// setup loads configuration and points the default logger at the command output,
// or at stderr when the output is JSON.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = c

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	// JSON output must stay parseable, so diagnostics go to stderr.
	logOut := cmd.OutOrStdout()
	if OutputFormat(strings.ToLower(flagFormat)) == FormatJSON {
		logOut = cmd.ErrOrStderr()
	}
	logger.SetDefault(logger.New(level, logOut))

	return nil
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the report file linked from a listing page",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}

	cmd.Flags().StringVar(&flagPath, "path", "", "Listing page path, e.g. /kk03/corona_kanjyajyokyo.html (required)")
	cmd.Flags().StringVar(&flagType, "type", "xlsx", "File type token: xlsx or pdf")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Save the downloaded file to the data directory (always on for pdf)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().IntVar(&flagHead, "head", 10, "Number of PDF lines to print")

	cmd.MarkFlagRequired("path")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	fileType := document.Type(flagType)
	if !fetcher.Supported(fileType, flagSave) {
		return fmt.Errorf("%w: %s", fetcher.ErrUnsupportedType, flagType)
	}
	needsDisk := flagSave || fileType == document.TypePDF

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		if needsDisk || !errors.Is(err, storage.ErrNoDataDir) {
			return fmt.Errorf("initializing storage: %w", err)
		}
		store = nil
	}

	doc, err := fetcher.New(cfg, store).Fetch(cmd.Context(), flagPath, fileType, flagSave)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", flagType, err)
	}
	defer doc.Close()

	result, err := NewFetchResult(doc, flagHead)
	if err != nil {
		return err
	}

	if err := WriteFetchResult(cmd.OutOrStdout(), result, format); err != nil {
		return err
	}

	if flagVerbose && format == FormatText {
		writeMetrics(cmd.OutOrStdout(), logger.GetMetricsSnapshot())
	}
	return nil
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Write a summary tree to the data directory",
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}

	cmd.Flags().StringVar(&flagOut, "out", "summary.json", "Output file name inside the data directory")
	cmd.Flags().StringVar(&flagLastUpdate, "last-update", "", "Value for last_update")
	cmd.Flags().StringToIntVar(&flagSet, "set", nil, "Category values, e.g. --set 陽性患者数=56")

	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	s := summary.New()
	s.LastUpdate = flagLastUpdate
	for attr, v := range flagSet {
		if err := s.Set(attr, v); err != nil {
			return err
		}
	}

	if err := store.WriteJSON(flagOut, s); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	logger.Log("summary", fmt.Sprintf("wrote %s", flagOut))
	return nil
}

func newDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "date SERIAL...",
		Short: "Convert spreadsheet date serials to dates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				t, err := convert.ParseSerial(arg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), convert.DateLabel(t))
			}
			return nil
		},
	}
}

func newNumbersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "numbers TEXT",
		Short: "Extract integers from text with full- or half-width digits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := convert.Numbers(args[0])
			if err != nil {
				return err
			}
			data, err := json.Marshal(nums)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newWeekdayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekday INDEX",
		Short: "Print the weekday label for an index (Monday=0)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid weekday index %q: %w", args[0], err)
			}
			label, err := convert.WeekdayLabel(i)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
