package sky

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadOptions controls catalogue ingestion and source quality cuts.
type LoadOptions struct {
	Beams          int     // beams per footprint
	IsolationLimit float64 // minimum nearest-neighbour separation (arcsec)
	MinFluxRatio   float64 // lower bound on integrated/peak flux
	MaxFluxRatio   float64 // upper bound on integrated/peak flux
}

// DefaultLoadOptions returns the standard ingestion settings: a 36-beam
// footprint, a 36 arcsec isolation radius and a compactness window of
// 0.8 to 1.2 on the integrated-to-peak flux ratio.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Beams:          36,
		IsolationLimit: 36.0,
		MinFluxRatio:   0.8,
		MaxFluxRatio:   1.2,
	}
}

// LoadOptions converts the file configuration into ingestion settings,
// applying defaults for anything left unset.
func (c *Config) LoadOptions() LoadOptions {
	lo := DefaultLoadOptions()
	if c.IsolationLimit > 0 {
		lo.IsolationLimit = c.IsolationLimit
	}
	if c.MinFluxRatio > 0 {
		lo.MinFluxRatio = c.MinFluxRatio
	}
	if c.MaxFluxRatio > 0 {
		lo.MaxFluxRatio = c.MaxFluxRatio
	}
	return lo
}

// source is one row of a component catalogue.
type source struct {
	pos      SkyPoint
	intFlux  float64
	peakFlux float64
}

// LoadCatalogues reads the per-beam component catalogues for a scheduling
// block from dataDir. Files are matched as SB<sbid>.*beam<NN>*.csv; beams
// with no file are skipped with a warning. The beam centre is estimated
// from the full source list before the quality cuts thin it out.
func LoadCatalogues(dataDir string, sbid int, opts LoadOptions) ([]*Catalogue, error) {
	if opts.Beams <= 0 {
		opts.Beams = DefaultLoadOptions().Beams
	}

	var cats []*Catalogue
	for beam := 0; beam < opts.Beams; beam++ {
		pattern := filepath.Join(dataDir, fmt.Sprintf("SB%d.*beam%02d*.csv", sbid, beam))
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("globbing beam %02d: %w", beam, err)
		}
		if len(files) == 0 {
			continue
		}
		if len(files) > 1 {
			log.Printf("[LOAD] beam %02d: %d candidate files, using %s", beam, len(files), files[0])
		}

		cat, err := loadCatalogue(files[0], beam, opts)
		if err != nil {
			return nil, fmt.Errorf("loading beam %02d: %w", beam, err)
		}
		cats = append(cats, cat)
	}

	if len(cats) == 0 {
		return nil, fmt.Errorf("no catalogues found for SB%d under %s", sbid, dataDir)
	}

	log.Printf("[LOAD] SB%d: %d beam catalogues loaded", sbid, len(cats))
	return cats, nil
}

// loadCatalogue parses one component CSV and applies the quality cuts.
func loadCatalogue(path string, beam int, opts LoadOptions) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalogue: %w", err)
	}
	defer f.Close()

	sources, err := parseComponents(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	all := make([]SkyPoint, len(sources))
	for i, s := range sources {
		all[i] = s.pos
	}
	centre := EstimateCentre(all)

	kept := filterSources(sources, opts)
	log.Printf("[LOAD] beam %02d: %d sources, %d after quality cuts", beam, len(sources), len(kept))

	return &Catalogue{
		Beam:   beam,
		Points: NewPointSet(kept),
		Path:   path,
		Centre: centre,
	}, nil
}

// parseComponents reads a component CSV with at least ra_deg, dec_deg,
// int_flux and peak_flux columns, located by header name.
func parseComponents(r io.Reader) ([]source, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"ra_deg", "dec_deg", "int_flux", "peak_flux"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var sources []source
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		s, err := parseSource(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sources = append(sources, s)
	}
	return sources, nil
}

func parseSource(record []string, cols map[string]int) (source, error) {
	field := func(name string) (float64, error) {
		idx := cols[name]
		if idx >= len(record) {
			return 0, fmt.Errorf("short record, no %s", name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			return 0, fmt.Errorf("bad %s: %w", name, err)
		}
		return v, nil
	}

	ra, err := field("ra_deg")
	if err != nil {
		return source{}, err
	}
	dec, err := field("dec_deg")
	if err != nil {
		return source{}, err
	}
	intFlux, err := field("int_flux")
	if err != nil {
		return source{}, err
	}
	peakFlux, err := field("peak_flux")
	if err != nil {
		return source{}, err
	}

	return source{
		pos:      SkyPoint{RA: ra, Dec: dec},
		intFlux:  intFlux,
		peakFlux: peakFlux,
	}, nil
}

// filterSources keeps sources that are isolated (no neighbour within the
// isolation radius) and compact (flux ratio inside the window). Crowded
// or resolved sources give ambiguous cross-matches, so they are dropped
// before alignment.
func filterSources(sources []source, opts LoadOptions) []SkyPoint {
	kept := make([]SkyPoint, 0, len(sources))
	for i, s := range sources {
		if s.peakFlux == 0 {
			continue
		}
		ratio := s.intFlux / s.peakFlux
		if ratio <= opts.MinFluxRatio || ratio >= opts.MaxFluxRatio {
			continue
		}
		if !isolated(sources, i, opts.IsolationLimit) {
			continue
		}
		kept = append(kept, s.pos)
	}
	return kept
}

// isolated reports whether source i has no neighbour within limit arcsec.
func isolated(sources []source, i int, limit float64) bool {
	for j, other := range sources {
		if j == i {
			continue
		}
		if Separation(sources[i].pos, other.pos) <= limit {
			return false
		}
	}
	return true
}
