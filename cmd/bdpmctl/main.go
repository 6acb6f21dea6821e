// Command bdpmctl syncs, inspects and queries a BDPM data directory without
// running the HTTP server.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/giygas/bdpm-api/config"
	"github.com/giygas/bdpm-api/downloader"
	"github.com/giygas/bdpm-api/interfaces"
	"github.com/giygas/bdpm-api/logging"
	"github.com/giygas/bdpm-api/snapshot"
	"github.com/giygas/bdpm-api/validation"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func dataDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Aliases: []string{"d"},
		Usage:   "Directory holding the committed source files",
		Value:   "data",
		EnvVars: []string{"DATA_DIR"},
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "bdpmctl",
		Usage:     "Sync and query the French public drug database",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: func(c *cli.Context) error {
			logging.Init(logging.Options{Level: logging.ParseLevel(c.String("log-level"))})
			return nil
		},
		After: func(c *cli.Context) error {
			logging.Close()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Bring the committed source files up to date",
				Action: syncCommand,
				Flags: []cli.Flag{
					dataDirFlag(),
					&cli.StringFlag{
						Name:    "base-url",
						Usage:   "Download endpoint",
						Value:   config.DefaultBaseURL,
						EnvVars: []string{"BDPM_BASE_URL"},
					},
					&cli.DurationFlag{
						Name:  "window",
						Usage: "Skip files checked more recently than this",
						Value: 24 * time.Hour,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Check every file regardless of the freshness window",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent downloads",
						Value: 4,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Timeout of each download",
						Value: 30 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Rank the rows of a table against a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dataDirFlag(),
					&cli.StringFlag{
						Name:    "table",
						Aliases: []string{"t"},
						Usage:   "Table to search, or \"all\" for the global search",
						Value:   "specialites",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of rows to print",
						Value: 10,
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Print a specialite with every related row",
				ArgsUsage: "<cis>",
				Action:    showCommand,
				Flags:     []cli.Flag{dataDirFlag()},
			},
			{
				Name:   "quality",
				Usage:  "Report data quality and row counts of the committed files",
				Action: qualityCommand,
				Flags:  []cli.Flag{dataDirFlag()},
			},
		},
	}
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func syncCommand(c *cli.Context) error {
	window := c.Duration("window")
	if c.Bool("force") {
		window = 0
	}

	dl, err := downloader.New(downloader.Options{
		Dir:     c.String("data-dir"),
		BaseURL: c.String("base-url"),
		Window:  window,
		Workers: c.Int("workers"),
	}, downloader.NewHTTPFetcher(c.Duration("timeout"), "bdpmctl/1.0"))
	if err != nil {
		return err
	}

	report, err := dl.Sync(c.Context)
	if err != nil {
		return err
	}
	if err := printJSON(c, report); err != nil {
		return err
	}
	if report.Count(interfaces.FileFailed) == len(report.Files) {
		return errors.New("every source file failed to sync")
	}
	return nil
}

func loadSnapshot(c *cli.Context) (*snapshot.Snapshot, error) {
	snap, err := snapshot.NewBuilder(c.String("data-dir")).Build(c.Context)
	if errors.Is(err, snapshot.ErrNoData) {
		return nil, fmt.Errorf("%w in %s, run \"bdpmctl sync\" first", err, c.String("data-dir"))
	}
	return snap, err
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("missing query")
	}
	if err := validation.ValidateQuery(query); err != nil {
		return err
	}

	snap, err := loadSnapshot(c)
	if err != nil {
		return err
	}

	limit := c.Int("limit")
	if c.String("table") == "all" {
		hits := snap.GlobalSearch(query)
		if len(hits) > limit {
			hits = hits[:limit]
		}
		return printJSON(c, hits)
	}

	results, err := snap.Search(c.String("table"), query)
	if err != nil {
		return err
	}
	return printJSON(c, results.Page(0, limit))
}

func showCommand(c *cli.Context) error {
	cis := c.Args().First()
	if err := validation.ValidateCIS(cis); err != nil {
		return err
	}

	snap, err := loadSnapshot(c)
	if err != nil {
		return err
	}
	detail, ok := snap.ExpandSpecialite(cis)
	if !ok {
		return fmt.Errorf("specialite %s not found", cis)
	}
	return printJSON(c, detail)
}

func qualityCommand(c *cli.Context) error {
	snap, err := loadSnapshot(c)
	if err != nil {
		return err
	}
	return printJSON(c, map[string]any{
		"fingerprint": fmt.Sprintf("%016x", snap.Fingerprint),
		"rows":        snap.Counts(),
		"quality":     validation.ReportDataQuality(snap),
	})
}
