package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-planet-client/pkg/aoi"
)

func newAOICommand() *cli.Command {
	return &cli.Command{
		Name:      "aoi",
		Usage:     "Print the square AOI for a point as GeoJSON",
		ArgsUsage: "<lat> <lon>",
		Flags:     []cli.Flag{sizeFlag},
		Action:    aoiAction,
	}
}

func aoiAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected 2 arguments: lat and lon")
	}

	lat, lon, err := parsePoint(cmd.Args().Get(0) + "," + cmd.Args().Get(1))
	if err != nil {
		return err
	}

	geom, err := aoi.Square(lat, lon, cmd.Float(sizeFlag.Name))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(geom, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
