package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-bond/disks"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const _MetadataInspect = "inspect"

var _FlagDisksURL = &cli.StringFlag{
	Name:     "url",
	Usage:    "sets archive dir or inspect http url",
	Required: false,
}

var _FlagHeaders = &cli.StringSliceFlag{
	Name:     "headers",
	Usage:    "sets http headers",
	Value:    cli.NewStringSlice(),
	Required: false,
}

var _FlagAlgorithm = &cli.StringFlag{
	Name:     "algorithm",
	Usage:    "sets sort algorithm",
	Value:    disks.AlgorithmLawnmower.String(),
	Required: false,
}

var _FlagHistoryAlgorithm = &cli.StringFlag{
	Name:     "algorithm",
	Usage:    "sets sort algorithm, all algorithms when empty",
	Required: false,
}

var _FlagLightCount = &cli.IntFlag{
	Name:     "light-count",
	Usage:    "sets number of light disks",
	Value:    8,
	Required: false,
}

var _FlagHistoryLightCount = &cli.IntFlag{
	Name:     "light-count",
	Usage:    "sets number of light disks, all counts when 0",
	Required: false,
}

var _FlagLimit = &cli.Uint64Flag{
	Name:     "limit",
	Usage:    "sets history row limit",
	Value:    30,
	Required: false,
}

var _FlagPretty = &cli.BoolFlag{
	Name:     "pretty",
	Usage:    "prints human readable output",
	Required: false,
}

var _FlagDeadline = &cli.DurationFlag{
	Name:     "deadline",
	Usage:    "sets request deadline",
	Value:    15 * time.Second,
	Required: false,
}

// NewInspectCLI builds the inspect command line app. Http and https urls are
// served by NewInspectRemote, anything else is passed to init.
func NewInspectCLI(init func(path string) (Inspect, error)) *cli.App {
	var inspect Inspect

	return &cli.App{
		Name: "disks-cli",
		Usage: "The cli for alternating disks sorts.\n\n" +
			"disks-cli --url .disks algorithms\n" +
			"disks-cli --url .disks sort --algorithm lawnmower --light-count 5\n" +
			"disks-cli --url http://localhost:7777/disks compare --light-count 64\n" +
			"disks-cli --url http://localhost:7777/disks history --algorithm left-to-right --limit 10",
		Flags: []cli.Flag{
			_FlagDisksURL,
			_FlagHeaders,
		},
		Metadata: map[string]interface{}{},
		Before: func(ctx *cli.Context) error {
			url := ctx.String(_FlagDisksURL.Name)
			if url == "" {
				return fmt.Errorf("url is required")
			}

			if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
				headers, err := parseHeaders(ctx.StringSlice(_FlagHeaders.Name))
				if err != nil {
					return err
				}

				inspect = NewInspectRemote(url, headers)
			} else {
				if init == nil {
					return fmt.Errorf("this CLI only supports http & https urls")
				}

				var err error
				inspect, err = init(url)
				if err != nil {
					return fmt.Errorf("failed to initialize Inspect - %w", err)
				}
			}

			ctx.App.Metadata[_MetadataInspect] = inspect
			return nil
		},
		After: func(ctx *cli.Context) error {
			if closer, ok := inspect.(io.Closer); ok {
				return closer.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "algorithms",
				Usage: "lists sort algorithm names",
				Action: func(ctx *cli.Context) error {
					algorithms, err := inspect.Algorithms()
					if err != nil {
						return err
					}
					return printJSON(ctx, algorithms)
				},
			},
			{
				Name:  "report-fields",
				Usage: "lists sort report fields",
				Action: func(ctx *cli.Context) error {
					fields, err := inspect.ReportFields()
					if err != nil {
						return err
					}
					return printJSON(ctx, fields)
				},
			},
			{
				Name:  "sort",
				Usage: "sorts an alternating row",
				Flags: []cli.Flag{
					_FlagAlgorithm,
					_FlagLightCount,
					_FlagPretty,
					_FlagDeadline,
				},
				Action: func(ctx *cli.Context) error {
					sortCtx, cancel := deadlineContext(ctx)
					defer cancel()

					report, err := inspect.Sort(sortCtx, ctx.String(_FlagAlgorithm.Name), ctx.Int(_FlagLightCount.Name))
					if err != nil {
						return err
					}

					if ctx.Bool(_FlagPretty.Name) {
						printReport(ctx.App.Writer, report)
						return nil
					}
					return printJSON(ctx, report)
				},
			},
			{
				Name:  "compare",
				Usage: "sorts the same row with every algorithm",
				Flags: []cli.Flag{
					_FlagLightCount,
					_FlagDeadline,
				},
				Action: func(ctx *cli.Context) error {
					sortCtx, cancel := deadlineContext(ctx)
					defer cancel()

					algorithms, err := inspect.Algorithms()
					if err != nil {
						return err
					}

					reports, err := compare(sortCtx, inspect, algorithms, ctx.Int(_FlagLightCount.Name))
					if err != nil {
						return err
					}

					for _, report := range reports {
						printCompareLine(ctx.App.Writer, report)
					}
					return nil
				},
			},
			{
				Name:  "history",
				Usage: "lists archived sort reports",
				Flags: []cli.Flag{
					_FlagHistoryAlgorithm,
					_FlagHistoryLightCount,
					_FlagLimit,
					_FlagPretty,
					_FlagDeadline,
				},
				Action: func(ctx *cli.Context) error {
					historyCtx, cancel := deadlineContext(ctx)
					defer cancel()

					reports, err := inspect.History(
						historyCtx,
						ctx.String(_FlagHistoryAlgorithm.Name),
						ctx.Int(_FlagHistoryLightCount.Name),
						ctx.Uint64(_FlagLimit.Name),
					)
					if err != nil {
						return err
					}

					if ctx.Bool(_FlagPretty.Name) {
						for _, report := range reports {
							printHistoryLine(ctx.App.Writer, report)
						}
						return nil
					}
					return printJSON(ctx, reports)
				},
			},
		},
		HideHelp:        true,
		HideHelpCommand: true,
	}
}

// InspectFromContext returns the Inspect set up by the app's Before hook.
func InspectFromContext(ctx *cli.Context) (Inspect, bool) {
	inspect, ok := ctx.App.Metadata[_MetadataInspect].(Inspect)
	return inspect, ok
}

// compare runs every algorithm on the same light count concurrently and
// returns the reports in algorithms order.
func compare(ctx context.Context, inspect Inspect, algorithms []string, lightCount int) ([]*disks.SortReport, error) {
	reports := make([]*disks.SortReport, len(algorithms))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, algorithm := range algorithms {
		eg.Go(func() error {
			report, err := inspect.Sort(egCtx, algorithm, lightCount)
			if err != nil {
				return fmt.Errorf("%s: %w", algorithm, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func parseHeaders(headersStr []string) (map[string]string, error) {
	headers := make(map[string]string)
	for _, s := range headersStr {
		header := strings.SplitN(s, "=", 2)
		if len(header) != 2 {
			return nil, fmt.Errorf("invalid header: %s", s)
		}

		headers[header[0]] = header[1]
	}
	return headers, nil
}

func deadlineContext(ctx *cli.Context) (context.Context, context.CancelFunc) {
	parent := ctx.Context
	if parent == nil {
		parent = context.Background()
	}
	return context.WithDeadline(parent, time.Now().Add(ctx.Duration(_FlagDeadline.Name)))
}

func printJSON(ctx *cli.Context, v any) error {
	resultJson, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(ctx.App.Writer, string(resultJson))
	return err
}

func printReport(w io.Writer, report *disks.SortReport) {
	_, _ = fmt.Fprintf(w, "before: %s\n", report.Before)
	_, _ = fmt.Fprintf(w, "after:  %s\n", report.After)
	_, _ = fmt.Fprintf(w, "%s sorted %s light disks with %s swaps in %s\n",
		report.Algorithm, humanize.Comma(int64(report.LightCount)), humanize.Comma(int64(report.SwapCount)), report.Elapsed)
}

func printCompareLine(w io.Writer, report *disks.SortReport) {
	_, _ = fmt.Fprintf(w, "%-14s %12s swaps %12s sorted=%t\n",
		report.Algorithm, humanize.Comma(int64(report.SwapCount)), report.Elapsed, report.Sorted)
}

func printHistoryLine(w io.Writer, report *disks.SortReport) {
	_, _ = fmt.Fprintf(w, "%s %-14s n=%-6d %12s swaps %s\n",
		report.ID, report.Algorithm, report.LightCount, humanize.Comma(int64(report.SwapCount)), humanize.Time(report.CreatedTime()))
}
