package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-planet-client/pkg/planet"
)

func newSearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the imagery catalog and save results as CSV",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "item-type",
				Usage:    "Planet item type (e.g. PSScene4Band, PSOrthoTile, REOrthoTile)",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:  "start",
				Usage: "Acquisition window start (RFC 3339)",
				Config: cli.TimestampConfig{
					Layouts: []string{time.RFC3339, "2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:  "end",
				Usage: "Acquisition window end (RFC 3339)",
				Config: cli.TimestampConfig{
					Layouts: []string{time.RFC3339, "2006-01-02"},
				},
			},
			&cli.FloatFlag{
				Name:  "cloud-cover",
				Usage: "Maximum cloud-cover fraction, 0 to 1",
			},
			&cli.StringFlag{
				Name:  "save-dir",
				Usage: "Directory for the output CSV",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Search name, used in the output file name",
				Value: "search",
			},
		}, aoiFlags()...),
		Action: searchAction,
	}
}

func searchAction(ctx context.Context, cmd *cli.Command) error {
	client, err := clientFromCommand(cmd)
	if err != nil {
		return err
	}

	geom, err := aoiFromCommand(cmd)
	if err != nil {
		return err
	}

	params := planet.SearchParams{
		ItemType:   cmd.String("item-type"),
		Start:      cmd.Timestamp("start"),
		End:        cmd.Timestamp("end"),
		CloudCover: cmd.Float("cloud-cover"),
		AOI:        geom,
		Name:       cmd.String("name"),
	}

	features, err := client.Search().SaveCSV(ctx, params, cmd.String("save-dir"))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%d items saved to %s\n", len(features), cmd.String("save-dir"))
	return nil
}
