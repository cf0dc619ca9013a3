package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-planet-client/pkg/aoi"
	"github.com/robert-malhotra/go-planet-client/pkg/planet"
)

// zerologAdapter satisfies planet.Logger.
type zerologAdapter struct {
	log zerolog.Logger
}

func (l zerologAdapter) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l zerologAdapter) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

func newLogger(cmd *cli.Command) zerologAdapter {
	level := zerolog.InfoLevel
	if cmd.Bool(verboseFlag.Name) {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return zerologAdapter{log: log}
}

func clientFromCommand(cmd *cli.Command) (*planet.Client, error) {
	key := cmd.String(keyFlag.Name)
	if key == "" {
		return nil, fmt.Errorf("an API key is required (--key or PL_API_KEY)")
	}

	return planet.New(key,
		planet.WithTimeout(cmd.Duration(timeoutFlag.Name)),
		planet.WithLogger(newLogger(cmd)),
	)
}

// AOI flags are shared between search and download.
var (
	pointFlag = &cli.StringFlag{
		Name:  "point",
		Usage: "Center of a square AOI as \"lat,lon\" in decimal degrees",
	}
	sizeFlag = &cli.FloatFlag{
		Name:  "size",
		Usage: "Square AOI side length in decimal degrees",
		Value: aoi.DefaultSquareSize,
	}
	aoiFileFlag = &cli.StringFlag{
		Name:  "aoi-file",
		Usage: "GeoJSON file with the AOI feature",
	}
	featureIndexFlag = &cli.IntFlag{
		Name:  "feature",
		Usage: "Zero-based feature index within --aoi-file",
	}
)

func aoiFlags() []cli.Flag {
	return []cli.Flag{pointFlag, sizeFlag, aoiFileFlag, featureIndexFlag}
}

func aoiFromCommand(cmd *cli.Command) (*geojson.Geometry, error) {
	point := cmd.String(pointFlag.Name)
	file := cmd.String(aoiFileFlag.Name)

	switch {
	case point != "" && file != "":
		return nil, fmt.Errorf("--point and --aoi-file are mutually exclusive")
	case point != "":
		lat, lon, err := parsePoint(point)
		if err != nil {
			return nil, err
		}
		return aoi.Square(lat, lon, cmd.Float(sizeFlag.Name))
	case file != "":
		return aoi.FeatureGeometry(file, int(cmd.Int(featureIndexFlag.Name)))
	default:
		return nil, fmt.Errorf("an AOI is required: pass --point or --aoi-file")
	}
}

func parsePoint(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"lat,lon\", got %q", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}
	return lat, lon, nil
}
