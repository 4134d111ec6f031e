package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/banksia-obs/beammetry/sky"
)

// AppOptions carries the CLI flag values into the App.
type AppOptions struct {
	ConfigFile      string
	DataDir         string
	SBID            int
	SeparationLimit float64
	Passes          int
	RandomSeed      int64
	OutputFile      string
	OffsetsCache    string
	PlotsDir        string
	SkyChart        string
	GeoJSON         string
	MqttMode        bool
}

// App encapsulates the application state and dependencies
type App struct {
	Config     *sky.Config
	MQTTClient *sky.MQTTClient
	Publisher  *sky.Publisher

	// CLI Flags (effectively dependencies)
	ConfigFile      string
	DataDir         string
	SBID            int
	SeparationLimit float64
	Passes          int
	RandomSeed      int64
	OutputFile      string
	OffsetsCache    string
	PlotsDir        string
	SkyChart        string
	GeoJSON         string
	MqttMode        bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.DataDir = opts.DataDir
	a.SBID = opts.SBID
	a.SeparationLimit = opts.SeparationLimit
	a.Passes = opts.Passes
	a.RandomSeed = opts.RandomSeed
	a.OutputFile = opts.OutputFile
	a.OffsetsCache = opts.OffsetsCache
	a.PlotsDir = opts.PlotsDir
	a.SkyChart = opts.SkyChart
	a.GeoJSON = opts.GeoJSON
	a.MqttMode = opts.MqttMode
}

// loadConfig loads the optional YAML configuration. A missing file is
// fine as long as the CLI flags cover the required settings.
func (a *App) loadConfig() *sky.Config {
	if a.Config != nil {
		return a.Config
	}
	if _, err := os.Stat(a.ConfigFile); err != nil {
		return nil
	}
	config, err := sky.LoadConfig(a.ConfigFile)
	if err != nil {
		log.Printf("Warning: Failed to load config file %s: %v", a.ConfigFile, err)
		return nil
	}
	log.Printf("Loaded config from %s", a.ConfigFile)
	a.Config = config
	return config
}

// effectiveSBID resolves the scheduling block ID: CLI flag over config.
func (a *App) effectiveSBID(config *sky.Config) (int, error) {
	if a.SBID > 0 {
		return a.SBID, nil
	}
	if config != nil && config.SBID > 0 {
		return config.SBID, nil
	}
	return 0, fmt.Errorf("no scheduling block ID: pass --sbid or set sbid in %s", a.ConfigFile)
}

// effectiveDataDir resolves the catalogue directory: CLI flag over config.
func (a *App) effectiveDataDir(config *sky.Config) string {
	if a.DataDir != "." && a.DataDir != "" {
		return a.DataDir
	}
	if config != nil && config.DataDir != "" {
		return config.DataDir
	}
	return "."
}

// alignConfig builds the scheduler settings, CLI flags overriding config.
func (a *App) alignConfig(config *sky.Config) sky.AlignConfig {
	ac := sky.DefaultAlignConfig()
	if config != nil {
		ac = config.AlignConfig()
	}
	if a.SeparationLimit > 0 {
		ac.SeparationLimit = a.SeparationLimit
	}
	if a.Passes > 0 {
		ac.Passes = a.Passes
	}
	if a.RandomSeed != 0 {
		ac.RNG = rand.New(rand.NewSource(a.RandomSeed))
	}
	return ac
}

// loadCatalogues resolves settings and ingests the per-beam catalogues.
func (a *App) loadCatalogues(config *sky.Config) ([]*sky.Catalogue, int, error) {
	id, err := a.effectiveSBID(config)
	if err != nil {
		return nil, 0, err
	}

	opts := sky.DefaultLoadOptions()
	if config != nil {
		opts = config.LoadOptions()
	}

	dir := a.effectiveDataDir(config)
	cats, err := sky.LoadCatalogues(dir, id, opts)
	if err != nil {
		return nil, 0, err
	}
	return cats, id, nil
}

// RunLoadOnly loads the beam catalogues and prints a summary for each
func (a *App) RunLoadOnly() {
	config := a.loadConfig()

	cats, id, err := a.loadCatalogues(config)
	if err != nil {
		log.Fatalf("Error loading catalogues: %v", err)
	}

	fmt.Printf("SB%d: %d beam catalogue(s)\n\n", id, len(cats))
	for _, c := range cats {
		fmt.Printf("=== beam %02d ===\n", c.Beam)
		fmt.Printf("File: %s\n", c.Path)
		fmt.Printf("Sources after quality cuts: %d\n", c.Points.Len())
		fmt.Printf("Centre: RA %.4f° Dec %.4f°\n", c.Centre.RA, c.Centre.Dec)
		fmt.Println()
	}
}

// RunAlign runs the full alignment and writes out every requested artifact
func (a *App) RunAlign() {
	config := a.loadConfig()

	cats, id, err := a.loadCatalogues(config)
	if err != nil {
		log.Fatalf("Error loading catalogues: %v", err)
	}

	ac := a.alignConfig(config)
	fmt.Printf("Aligning SB%d: %d beams, limit %.1f\", %d pass(es)\n",
		id, len(cats), ac.SeparationLimit, maxInt(ac.Passes, 1))

	// Keep the pre-alignment match matrix for the heat map: it shows the
	// beam overlap structure the scheduler worked with.
	var initialMatrix = sky.BuildMatchMatrix(cats, ac.SeparationLimit)

	scheduler, err := sky.NewScheduler(cats, ac)
	if err != nil {
		log.Fatalf("Error preparing alignment: %v", err)
	}

	stats, err := scheduler.Run()
	if err != nil {
		log.Fatalf("Alignment failed: %v", err)
	}

	// Per-beam results
	fmt.Println("\nPer-beam offsets:")
	for _, c := range cats {
		fmt.Printf("  %s\n", c)
	}
	if len(stats) > 0 {
		last := stats[len(stats)-1]
		fmt.Printf("\nFinal state: %d matched pairs, mean separation %.3f\"\n",
			last.MatchedPairs, last.MeanSeparation())
	}

	// Offsets table
	if a.OutputFile != "" {
		if err := sky.SaveOffsetTable(a.OutputFile, cats); err != nil {
			log.Fatalf("Error writing offset table: %v", err)
		}
		fmt.Printf("Wrote offset table: %s\n", a.OutputFile)
	}

	// Offsets cache
	if a.OffsetsCache != "" {
		data := sky.BuildOffsetData(id, ac.SeparationLimit, cats)
		if err := sky.SaveOffsets(a.OffsetsCache, data); err != nil {
			log.Printf("Warning: Failed to save offsets cache: %v", err)
		} else {
			fmt.Printf("Offsets cache updated: %s\n", a.OffsetsCache)
		}
	}

	// Plots
	if a.PlotsDir != "" {
		if err := os.MkdirAll(a.PlotsDir, 0755); err != nil {
			log.Fatalf("Error creating plots directory: %v", err)
		}

		matrixPath := filepath.Join(a.PlotsDir, "match-matrix.png")
		if err := sky.SaveMatchMatrixPlot(initialMatrix, matrixPath); err != nil {
			log.Printf("Warning: Failed to plot match matrix: %v", err)
		} else {
			fmt.Printf("Created plot: %s\n", matrixPath)
		}

		convergencePath := filepath.Join(a.PlotsDir, "convergence.png")
		if err := sky.SaveConvergencePlot(stats, convergencePath); err != nil {
			log.Printf("Warning: Failed to plot convergence: %v", err)
		} else {
			fmt.Printf("Created plot: %s\n", convergencePath)
		}
	}

	// Sky chart
	if a.SkyChart != "" {
		if err := sky.SaveSkyChart(a.SkyChart, cats); err != nil {
			log.Fatalf("Error rendering sky chart: %v", err)
		}
		fmt.Printf("Created sky chart: %s\n", a.SkyChart)
	}

	// GeoJSON export
	if a.GeoJSON != "" {
		if err := sky.SaveGeoJSON(a.GeoJSON, cats); err != nil {
			log.Fatalf("Error exporting GeoJSON: %v", err)
		}
		fmt.Printf("Created GeoJSON: %s\n", a.GeoJSON)
	}

	// MQTT publishing
	if a.MqttMode {
		a.publishResults(config, cats, stats)
	}

	fmt.Println("Done!")
}

// publishResults pushes the offsets and convergence series to MQTT.
func (a *App) publishResults(config *sky.Config, cats []*sky.Catalogue, stats []sky.StepStatistics) {
	mqttClient, err := sky.InitMQTT(config)
	if err != nil {
		log.Fatalf("Failed to initialize MQTT: %v", err)
	}
	if mqttClient == nil {
		log.Fatal("MQTT broker not configured (set MQTT_BROKER or mqtt.broker in config)")
	}
	a.MQTTClient = mqttClient
	defer mqttClient.Disconnect()

	prefix := ""
	if config != nil {
		prefix = config.MQTT.PublishPrefix
	}
	a.Publisher = sky.NewPublisher(mqttClient.GetClient(), prefix)

	if err := a.Publisher.PublishOffsets(cats); err != nil {
		log.Printf("Warning: Failed to publish offsets: %v", err)
	}
	if err := a.Publisher.PublishConvergence(stats); err != nil {
		log.Printf("Warning: Failed to publish convergence series: %v", err)
	}
	fmt.Println("Published offsets to MQTT")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
