package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"firewall-network-graph/internal/config"
	"firewall-network-graph/internal/controller"
	"firewall-network-graph/internal/engine"
	"firewall-network-graph/internal/model"
	"firewall-network-graph/internal/parser"
	"firewall-network-graph/internal/server"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	logFile    string
	sourcePath string
	format     string
	dsn        string
	table      string

	listenAddr string
	noWatch    bool

	layoutMode  string
	settleTicks int
	filters     model.Filters

	recordID int

	cfg config.Config
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fwgraph",
		Short: "Firewall rule network graph builder",
		Long: `fwgraph turns firewall rule records into a network graph of hosts and
connections, lays it out for rendering and serves it over HTTP.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML configuration file")
	flags.StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	flags.StringVar(&logFormat, "log-format", "json", "Log format: 'json' or 'text'")
	flags.StringVar(&logFile, "log-file", "", "Rotated log file receiving a JSON copy of the log")
	flags.StringVar(&sourcePath, "source", "", "Firewall records file (xlsx, csv or FortiGate config)")
	flags.StringVar(&format, "format", "", "Records file format: 'auto', 'xlsx', 'csv' or 'fortigate'")
	flags.StringVar(&dsn, "dsn", "", "MariaDB connection string; overrides --source")
	flags.StringVar(&table, "table", "", "MariaDB table holding the rule records")

	rootCmd.AddCommand(newServeCmd(), newGraphCmd(), newOptionsCmd(), newRecordsCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	overrides := []struct {
		name   string
		target *string
		value  string
	}{
		{"log-level", &loaded.Log.Level, logLevel},
		{"log-format", &loaded.Log.Format, logFormat},
		{"log-file", &loaded.Log.File, logFile},
		{"source", &loaded.Source.Path, sourcePath},
		{"format", &loaded.Source.Format, format},
		{"dsn", &loaded.Source.DSN, dsn},
		{"table", &loaded.Source.Table, table},
		{"listen", &loaded.Listen, listenAddr},
		{"mode", &loaded.Layout.Mode, layoutMode},
	}
	for _, o := range overrides {
		if f := flags.Lookup(o.name); f != nil && f.Changed {
			*o.target = o.value
		}
	}
	if f := flags.Lookup("no-watch"); f != nil && f.Changed {
		enabled := !noWatch
		loaded.Watch.Enabled = &enabled
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	slog.SetDefault(setupLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File))
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph API and watch the source for updates",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (default from config, :3000)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable background polling of the record source")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("Starting firewall network graph server", "listen", cfg.Listen)

	ctrl, closeSource, err := newController()
	if err != nil {
		return err
	}
	defer closeSource()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Loading firewall records...", "source", describeSource(ctrl.Source()))
	if err := ctrl.Load(ctx); err != nil {
		slog.Warn("Initial load failed, serving an empty graph until the source is available", "error", err)
	} else {
		shape := ctrl.Shape()
		slog.Info("Successfully loaded firewall records", "total_nodes", shape.Nodes, "total_links", shape.Links)
	}

	var watcher *controller.Watcher
	if cfg.Watch.IsEnabled() {
		watcher = controller.NewWatcher(ctrl, cfg.Watch.Interval, cfg.Watch.NoticeTimeout)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(ctrl, watcher).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if watcher != nil {
		g.Go(func() error { return watcher.Run(ctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Server stopped with error", "error", err)
		return err
	}
	slog.Info("Server stopped")
	return nil
}

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the laid out graph as JSON",
		RunE:  runGraph,
	}
	cmd.Flags().StringVar(&layoutMode, "mode", "", "Layout mode: 'global' or 'zone'")
	cmd.Flags().IntVar(&settleTicks, "settle", 0, "Run this many layout ticks and pin every node before printing")
	cmd.Flags().StringSliceVar(&filters.SourceZone, "source-zone", nil, "Keep records from these source zones")
	cmd.Flags().StringSliceVar(&filters.TargetZone, "target-zone", nil, "Keep records to these target zones")
	cmd.Flags().StringSliceVar(&filters.Service, "service", nil, "Keep records with these services")
	cmd.Flags().StringVar(&filters.SourceIP, "source-ip", "", "Keep records whose source IP contains this text")
	cmd.Flags().StringVar(&filters.TargetIP, "target-ip", "", "Keep records whose target IP contains this text")
	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctrl, closeSource, err := newController()
	if err != nil {
		return err
	}
	defer closeSource()

	if err := ctrl.ApplyFilters(cmd.Context(), filters); err != nil {
		slog.Error("Failed to load firewall records", "error", err)
		return err
	}
	if settleTicks > 0 {
		ctrl.Settle(settleTicks, 1, 1-0.0228)
	}
	return writeJSON(cmd.OutOrStdout(), ctrl.Snapshot())
}

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the distinct filter values found in the records",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetchRecords(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), engine.Options(records))
		},
	}
}

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Print the normalized records, or one record with --id",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetchRecords(cmd.Context())
			if err != nil {
				return err
			}
			if recordID == 0 {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			rec, ok := engine.FindRecord(records, recordID)
			if !ok {
				return fmt.Errorf("record %d not found", recordID)
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().IntVar(&recordID, "id", 0, "Record ID to print")
	return cmd
}

func newController() (*controller.Controller, func() error, error) {
	mode, err := cfg.LayoutMode()
	if err != nil {
		return nil, nil, err
	}
	src, closeSource, err := cfg.NewSource()
	if err != nil {
		slog.Error("Failed to open record source", "error", err)
		return nil, nil, err
	}
	return controller.New(src, cfg.LayoutConfig(), mode), closeSource, nil
}

func fetchRecords(ctx context.Context) ([]model.Record, error) {
	src, closeSource, err := cfg.NewSource()
	if err != nil {
		return nil, err
	}
	defer closeSource()

	slog.Info("Loading firewall records...", "source", describeSource(src))
	records, err := src.Records(ctx)
	if err != nil {
		slog.Error("Failed to load firewall records", "error", err)
		return nil, err
	}
	slog.Info("Successfully loaded firewall records", "record_count", len(records))
	return records, nil
}

func describeSource(src parser.Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(level, logFormat, logFilePath string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logW := os.Stderr
	var handler slog.Handler
	if strings.EqualFold(logFormat, "text") {
		handler = tint.NewHandler(logW, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
			NoColor:    !isatty.IsTerminal(logW.Fd()),
		})
	} else {
		handler = slog.NewJSONHandler(logW, &slog.HandlerOptions{Level: lvl})
	}

	if logFilePath != "" {
		logFile := &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    5, // MB
			MaxBackups: 4,
			MaxAge:     30, // days
			Compress:   true,
		}
		handler = slogmulti.Fanout(handler, slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: lvl}))
	}

	return slog.New(handler)
}
