package main

import (
	"flag"
	"fmt"

	"github.com/banksia-obs/beammetry/sky"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile   = flag.String("config", "config.yaml", "Path to configuration file")
	loadOnly     = flag.Bool("load-only", false, "Load and summarize beam catalogues, then exit (test mode)")
	dataDir      = flag.String("data-dir", ".", "Directory containing component catalogue CSVs")
	sbid         = flag.Int("sbid", 0, "Scheduling block ID (overrides config)")
	sepLimit     = flag.Float64("separation-limit", 0, "Cross-match radius in arcseconds (overrides config)")
	passes       = flag.Int("passes", 0, "Number of alignment passes (overrides config)")
	randomSeed   = flag.Int64("seed", 0, "Random seed for reseed selection (0 = time-based)")
	outputFile   = flag.String("output", "offsets.csv", "Output CSV file for per-beam offsets")
	offsetsCache = flag.String("offsets-cache", sky.DefaultOffsetsCachePath, "Path to offsets cache file")
	plotsDir     = flag.String("plots", "", "Directory for convergence and match-matrix plots")
	skyChart     = flag.String("sky-chart", "", "Render aligned sources to this SVG/PNG file")
	geojsonFile  = flag.String("geojson", "", "Export aligned sources as GeoJSON to this file")
	mqttMode     = flag.Bool("mqtt", false, "Publish offsets and convergence series to MQTT")
)

func main() {
	flag.Parse()
	fmt.Printf("beammetry version: %s\n", Version)

	app := NewApp()
	app.ApplyOptions(AppOptions{
		ConfigFile:      *configFile,
		DataDir:         *dataDir,
		SBID:            *sbid,
		SeparationLimit: *sepLimit,
		Passes:          *passes,
		RandomSeed:      *randomSeed,
		OutputFile:      *outputFile,
		OffsetsCache:    *offsetsCache,
		PlotsDir:        *plotsDir,
		SkyChart:        *skyChart,
		GeoJSON:         *geojsonFile,
		MqttMode:        *mqttMode,
	})

	if *loadOnly {
		app.RunLoadOnly()
		return
	}

	// Alignment is the default work mode
	app.RunAlign()
}
