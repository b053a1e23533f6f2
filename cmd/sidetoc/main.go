package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sidetoc"
	"github.com/fwojciec/sidetoc/batch"
	"github.com/fwojciec/sidetoc/goldmark"
	"github.com/fwojciec/sidetoc/goquery"
	tochttp "github.com/fwojciec/sidetoc/http"
	"github.com/fwojciec/sidetoc/rod"
	tocslog "github.com/fwojciec/sidetoc/slog"
	"github.com/fwojciec/sidetoc/sqlite"
	"github.com/fwojciec/sidetoc/yaml"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Optional YAML file with extra adapters and config overrides.
	AdaptersPath string

	// SQLite database used by the annotation store.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:       defaultDBPath(),
		AdaptersPath: os.Getenv("SIDETOC_ADAPTERS"),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sidetoc"),
		kong.Description("Navigable tables of contents for ChatGPT and Claude conversations"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sidetoc --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := sidetoc.DefaultConfig()
	registry := goquery.NewDefaultRegistry()
	if m.AdaptersPath != "" {
		f, err := yaml.Load(m.AdaptersPath, cfg)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check the file named by SIDETOC_ADAPTERS")
			return err
		}
		if err := f.Register(registry); err != nil {
			return fmt.Errorf("%s: %w", m.AdaptersPath, err)
		}
		cfg = f.Config
	}
	if cli.MaxTopics > 0 {
		cfg.MaxTopics = cli.MaxTopics
	}
	if cli.PreviewLength > 0 {
		cfg.PreviewLength = cli.PreviewLength
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	scanner := goquery.NewScanner(registry, goldmark.NewHeadingParser(), cfg)
	deps.Config = cfg
	deps.Registry = registry
	deps.Reporter = scanner
	deps.Scanner = tocslog.NewLoggingScanner(scanner, deps.Logger)

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SIDETOC_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()
	deps.Annotations = tocslog.NewLoggingAnnotationService(sqlite.NewAnnotationService(m.DB), deps.Logger)

	switch cmd {
	case "scan", "adapters":
		var sources []string
		var host string
		var static bool
		var concurrency int
		rps := 1.0
		if cmd == "scan" {
			sources, host, static = cli.Scan.Sources, cli.Scan.Host, cli.Scan.Static
			concurrency, rps = cli.Scan.Concurrency, cli.Scan.Rate
		} else if cli.Adapters.Source != "" {
			sources, host, static = []string{cli.Adapters.Source}, cli.Adapters.Host, cli.Adapters.Static
		}

		deps.Runner = &batch.Runner{
			Scanner:     deps.Scanner,
			RateLimiter: batch.NewDomainLimiter(rps),
			Concurrency: concurrency,
			Host:        host,
			HostHint:    goquery.HostHint,
			Logger:      deps.Logger,
		}
		if anyURL(sources) {
			fetcher, err := newFetcher(static)
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --static")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer fetcher.Close()
			deps.Runner.Fetcher = tocslog.NewLoggingFetcher(fetcher, deps.Logger)
		}

	case "watch":
		opts := []rod.ManagerOption{rod.WithHeadless(!cli.Watch.Show)}
		if cli.Watch.ControlURL != "" {
			opts = append(opts, rod.WithControlURL(cli.Watch.ControlURL))
		}
		manager, err := rod.NewBrowserManager(opts...)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --control-url")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer manager.Close()
		deps.OpenPage = func(ctx context.Context, url string) (LivePage, error) {
			return manager.Open(ctx, url, rod.WithHighlightDuration(cfg.HighlightDuration))
		}
	}

	return kongCtx.Run(deps)
}

// newFetcher returns a browser-backed fetcher, or a plain HTTP one when
// static is set.
func newFetcher(static bool) (sidetoc.Fetcher, error) {
	if static {
		return tochttp.NewFetcher(), nil
	}
	return rod.NewFetcher()
}

func anyURL(sources []string) bool {
	for _, s := range sources {
		if batch.IsURL(s) {
			return true
		}
	}
	return false
}

func defaultDBPath() string {
	if path := os.Getenv("SIDETOC_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sidetoc.db"
	}
	dir := filepath.Join(home, ".sidetoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sidetoc.db")
}
