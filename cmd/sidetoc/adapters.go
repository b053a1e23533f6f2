package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Run executes the adapters command. Without a source it lists the
// registered adapters; with one it reports how many elements each selector
// of the resolved adapter matches on that page.
func (c *AdaptersCmd) Run(deps *Dependencies) error {
	if c.Source == "" {
		w := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
		for _, info := range deps.Registry.List() {
			hosts := strings.Join(info.Hosts, ", ")
			if hosts == "" {
				hosts = "(fallback)"
			}
			fmt.Fprintf(w, "%s\t%s\n", info.Name, hosts)
		}
		return w.Flush()
	}

	html, host, err := deps.Runner.Load(deps.Ctx, c.Source)
	if err != nil {
		return err
	}
	if c.Host != "" {
		host = c.Host
	}

	report, err := deps.Reporter.Report(html, host)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "adapter: %s\n", report.Adapter)
	w := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHAIN\tMATCHES\tSELECTOR")
	for _, sc := range report.Counts {
		fmt.Fprintf(w, "%s\t%d\t%s\n", sc.Chain, sc.Count, sc.Selector)
	}
	return w.Flush()
}
