package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/sidetoc"
	"github.com/fwojciec/sidetoc/batch"
	"github.com/fwojciec/sidetoc/goquery"
)

// LivePage is an open browser tab a watch session runs against.
type LivePage interface {
	sidetoc.Page
	sidetoc.MutationObserver
	sidetoc.Revealer
	Close() error
}

// SelectorReporter counts the matches of an adapter's selectors on a page.
type SelectorReporter interface {
	Report(html string, host string) (*sidetoc.SelectorReport, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
	Config      sidetoc.Config
	Registry    *goquery.Registry
	Scanner     sidetoc.Scanner
	Reporter    SelectorReporter
	Runner      *batch.Runner
	Annotations sidetoc.AnnotationService
	OpenPage    func(ctx context.Context, url string) (LivePage, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose       bool `short:"v" help:"Log debug output to stderr"`
	MaxTopics     int  `help:"Maximum topics per page (default 25)"`
	PreviewLength int  `help:"Message preview length in characters (default 60)"`

	Scan     ScanCmd     `cmd:"" help:"Extract the table of contents of saved pages or URLs"`
	Watch    WatchCmd    `cmd:"" help:"Follow a live chat page and print its table of contents as it changes"`
	Label    LabelCmd    `cmd:"" help:"Set or clear the custom label of a topic"`
	Check    CheckCmd    `cmd:"" help:"Toggle the study-mode check mark of a topic"`
	Adapters AdaptersCmd `cmd:"" help:"List site adapters or report selector matches for a page"`
}

// ScanCmd is the "scan" subcommand.
type ScanCmd struct {
	Sources     []string `arg:"" help:"Saved HTML files or page URLs"`
	View        string   `default:"all" enum:"all,sections,chat" help:"Topics to show: all, sections or chat"`
	Search      string   `short:"s" help:"Only show topics containing this text"`
	Host        string   `help:"Adapter host for every source (default: from the URL or the saved page)"`
	JSON        bool     `help:"Print results as JSON"`
	Keys        bool     `help:"Print annotation keys"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent page limit"`
	Rate        float64  `default:"1" help:"Page loads per second per host (0 for no limit)"`
	Static      bool     `help:"Load URLs with plain HTTP instead of a browser"`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	URL        string `arg:"" help:"Chat page URL"`
	View       string `default:"all" enum:"all,sections,chat" help:"Topics to show: all, sections or chat"`
	Search     string `short:"s" help:"Only show topics containing this text"`
	Serve      string `help:"Serve the topic list over HTTP on this address, e.g. localhost:7070"`
	ControlURL string `help:"DevTools websocket URL of a running browser to attach to"`
	Show       bool   `help:"Show the browser window"`
}

// LabelCmd is the "label" subcommand.
type LabelCmd struct {
	Key   string `arg:"" help:"Topic key, as printed by 'scan --keys'"`
	Label string `arg:"" optional:"" help:"Custom label; omit to clear"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Key string `arg:"" help:"Topic key, as printed by 'scan --keys'"`
}

// AdaptersCmd is the "adapters" subcommand.
type AdaptersCmd struct {
	Source string `arg:"" optional:"" help:"Saved HTML file or page URL to report selector matches for"`
	Host   string `help:"Adapter host to report for (default: from the URL or the saved page)"`
	Static bool   `help:"Load URLs with plain HTTP instead of a browser"`
}
