package sky

import (
	"fmt"
	"math"
	"math/rand"
)

// SkyPoint is a source position on the celestial sphere.
// RA and Dec are in degrees (ICRS); RA is kept in [0, 360).
type SkyPoint struct {
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// Offset is a positional correction in arcseconds.
// RA is a great-circle distance along the RA axis, so the cos(Dec)
// foreshortening is already folded in. Dec is a plain declination delta.
type Offset struct {
	RA  float64 `json:"ra_arcsec"`
	Dec float64 `json:"dec_arcsec"`
}

// Add returns the accumulated offset after applying another correction.
func (o Offset) Add(other Offset) Offset {
	return Offset{RA: o.RA + other.RA, Dec: o.Dec + other.Dec}
}

// IsZero reports whether the offset is exactly zero on both axes.
func (o Offset) IsZero() bool {
	return o.RA == 0 && o.Dec == 0
}

// Total returns the combined offset magnitude in arcseconds.
func (o Offset) Total() float64 {
	return math.Hypot(o.RA, o.Dec)
}

// Catalogue is one beam's source list together with its alignment state.
// Fixed and Offset are owned by the Scheduler; nothing else mutates them.
type Catalogue struct {
	Beam   int       // beam number within the footprint
	Points *PointSet // current (possibly shifted) source positions
	Path   string    // source file, informational
	Centre SkyPoint  // estimated beam centre, informational
	Fixed  bool      // true once this catalogue has joined the reference frame
	Offset Offset    // cumulative correction applied so far
}

func (c *Catalogue) String() string {
	state := "floating"
	if c.Fixed {
		state = "fixed"
	}
	return fmt.Sprintf("beam %02d (%d sources, %s, offset %.2f\",%.2f\")",
		c.Beam, c.Points.Len(), state, c.Offset.RA, c.Offset.Dec)
}

// MatchResult holds the outcome of cross-matching catalogue B against
// catalogue A. Pairs is a radius join: every (a, b) combination within the
// separation limit appears, so one source may take part in several pairs.
// The offset statistics are B minus A in arcseconds; they are NaN when
// Count is zero, so callers must check Usable before consuming them.
type MatchResult struct {
	Pairs         [][2]int // index pairs (a, b) into the two point sets
	Count         int
	MeanRA        float64 // arcsec, great-circle along RA
	MeanDec       float64 // arcsec
	StdRA         float64
	StdDec        float64
	SeparationSum float64 // summed pair separations in arcsec
}

// Usable reports whether the result carries meaningful offset statistics.
func (m MatchResult) Usable() bool {
	return m.Count > 0
}

// MeanOffset returns the mean positional offset of B relative to A.
// Only valid when Usable is true.
func (m MatchResult) MeanOffset() Offset {
	return Offset{RA: m.MeanRA, Dec: m.MeanDec}
}

// StepStatistics is one convergence sample taken after a scheduler step.
// The totals cover every unordered catalogue pair, matched at the same
// separation limit the scheduler uses. Observability only.
type StepStatistics struct {
	Step          int     `json:"step"`
	SeparationSum float64 `json:"separation_sum_arcsec"`
	MatchedPairs  int     `json:"matched_pairs"`
}

// MeanSeparation returns the average matched separation in arcseconds,
// or NaN when nothing matched.
func (s StepStatistics) MeanSeparation() float64 {
	if s.MatchedPairs == 0 {
		return math.NaN()
	}
	return s.SeparationSum / float64(s.MatchedPairs)
}

// AlignConfig holds configuration for the alignment scheduler.
// Angular values are in arcseconds.
type AlignConfig struct {
	SeparationLimit  float64    // maximum pair separation for a match (arcsec)
	Passes           int        // number of full sweeps over the catalogue set
	GatherStatistics bool       // record a convergence sample after each step
	RNG              *rand.Rand // used only for reseed selection
}

// DefaultAlignConfig returns the standard scheduler settings: a 9 arcsec
// match radius, a single pass and statistics gathering enabled.
func DefaultAlignConfig() AlignConfig {
	return AlignConfig{
		SeparationLimit:  9.0,
		Passes:           1,
		GatherStatistics: true,
		RNG:              nil, // NewScheduler seeds one lazily
	}
}

// MQTTConfig holds MQTT broker connection settings.
type MQTTConfig struct {
	Broker        string `yaml:"broker"`
	ClientID      string `yaml:"clientId"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	PublishPrefix string `yaml:"publishPrefix"`
}

// Config is the unified YAML configuration for the beammetry tool.
type Config struct {
	MQTT MQTTConfig `yaml:"mqtt"`

	DataDir string `yaml:"dataDir"`
	SBID    int    `yaml:"sbid"`

	SeparationLimit  float64 `yaml:"separationLimitArcsec"`
	Passes           int     `yaml:"passes"`
	GatherStatistics *bool   `yaml:"gatherStatistics"`
	RandomSeed       int64   `yaml:"randomSeed"`

	IsolationLimit float64 `yaml:"isolationLimitArcsec"`
	MinFluxRatio   float64 `yaml:"minFluxRatio"`
	MaxFluxRatio   float64 `yaml:"maxFluxRatio"`
}

// AlignConfig converts the file configuration into scheduler settings,
// applying defaults for anything left unset.
func (c *Config) AlignConfig() AlignConfig {
	ac := DefaultAlignConfig()
	if c.SeparationLimit > 0 {
		ac.SeparationLimit = c.SeparationLimit
	}
	if c.Passes > 0 {
		ac.Passes = c.Passes
	}
	if c.GatherStatistics != nil {
		ac.GatherStatistics = *c.GatherStatistics
	}
	if c.RandomSeed != 0 {
		ac.RNG = rand.New(rand.NewSource(c.RandomSeed))
	}
	return ac
}
