package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-planet-client/pkg/planet"
)

func newDownloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Clip items to the AOI and download the results",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "item-type",
				Usage:    "Planet item type of the listed items",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "ids",
				Usage: "Item identifiers to clip and download",
			},
			&cli.StringFlag{
				Name:  "ids-csv",
				Usage: "CSV file with an id column (e.g. a previous search output)",
			},
			&cli.StringFlag{
				Name:  "feature-name",
				Usage: "Label used in output file names",
				Value: "clip",
			},
			&cli.StringFlag{
				Name:  "save-dir",
				Usage: "Directory for downloaded files",
				Value: ".",
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "Delay between order readiness checks",
				Value: 10 * time.Second,
			},
			&cli.IntFlag{
				Name:  "max-poll-attempts",
				Usage: "Readiness checks per item before timing out",
				Value: 60,
			},
		}, aoiFlags()...),
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	client, err := clientFromCommand(cmd)
	if err != nil {
		return err
	}

	geom, err := aoiFromCommand(cmd)
	if err != nil {
		return err
	}

	ids := cmd.StringSlice("ids")
	if csvPath := cmd.String("ids-csv"); csvPath != "" {
		fromCSV, err := readIDColumn(csvPath)
		if err != nil {
			return err
		}
		ids = append(ids, fromCSV...)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no item ids: pass --ids or --ids-csv")
	}

	params := planet.BatchParams{
		AOI:         geom,
		FeatureName: cmd.String("feature-name"),
		ItemIDs:     ids,
		ItemType:    cmd.String("item-type"),
		SaveDir:     cmd.String("save-dir"),
	}

	report, err := client.Orders().ClipBatch(ctx, params,
		planet.WithPollInterval(cmd.Duration("poll-interval")),
		planet.WithMaxPollAttempts(int(cmd.Int("max-poll-attempts"))),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%d of %d items downloaded\n", len(report.Succeeded()), len(report.Results))
	for _, failure := range report.Failed() {
		fmt.Fprintf(os.Stderr, "failed: %s: %v\n", failure.ItemID, failure.Err)
	}
	if len(report.Failed()) > 0 {
		return fmt.Errorf("%d items failed", len(report.Failed()))
	}
	return nil
}

// readIDColumn pulls the id column out of a search result CSV.
func readIDColumn(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	idCol := -1
	for i, col := range header {
		if col == "id" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%s has no id column", path)
	}

	var ids []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if record[idCol] != "" {
			ids = append(ids, record[idCol])
		}
	}
}
