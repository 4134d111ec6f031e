package sky

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultOffsetsCachePath is the default path for the computed offsets cache
const DefaultOffsetsCachePath = ".offsets-cache.json"

// BeamOffset is one beam's cached correction.
type BeamOffset struct {
	Offset  Offset `json:"offset"`
	Sources int    `json:"sources"`
}

// OffsetData is the persisted outcome of an alignment run. Applying the
// cached offsets via PointSet.Shift reproduces the aligned positions
// without re-running the scheduler.
type OffsetData struct {
	SBID            int                `json:"sbid"`
	SeparationLimit float64            `json:"separationLimitArcsec"`
	Beams           map[int]BeamOffset `json:"beams"`
	LastUpdated     int64              `json:"lastUpdated"`
}

// LoadOffsets loads cached offsets from a JSON file
func LoadOffsets(path string) (*OffsetData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No offsets file yet
		}
		return nil, fmt.Errorf("reading offsets file: %w", err)
	}

	var off OffsetData
	if err := json.Unmarshal(data, &off); err != nil {
		return nil, fmt.Errorf("parsing offsets file: %w", err)
	}

	return &off, nil
}

// SaveOffsets saves computed offsets to a JSON cache file
func SaveOffsets(path string, off *OffsetData) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating offsets directory: %w", err)
	}

	off.LastUpdated = time.Now().Unix()

	data, err := json.MarshalIndent(off, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling offsets: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing offsets file: %w", err)
	}

	return nil
}

// BuildOffsetData captures the per-beam offsets of an aligned catalogue set.
func BuildOffsetData(sbid int, limit float64, cats []*Catalogue) *OffsetData {
	data := &OffsetData{
		SBID:            sbid,
		SeparationLimit: limit,
		Beams:           make(map[int]BeamOffset, len(cats)),
		LastUpdated:     time.Now().Unix(),
	}
	for _, c := range cats {
		data.Beams[c.Beam] = BeamOffset{
			Offset:  c.Offset,
			Sources: c.Points.Len(),
		}
	}
	return data
}

// GetOffset returns the cached correction for a beam, or a zero offset
// when the beam is unknown.
func (d *OffsetData) GetOffset(beam int) Offset {
	if d == nil || d.Beams == nil {
		return Offset{}
	}
	return d.Beams[beam].Offset
}

// WriteOffsetTable writes the per-beam offsets as CSV with a header row.
func WriteOffsetTable(w io.Writer, cats []*Catalogue) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"beam", "ra_offset_arcsec", "dec_offset_arcsec", "sources"}); err != nil {
		return fmt.Errorf("writing offset table header: %w", err)
	}
	for _, c := range cats {
		record := []string{
			strconv.Itoa(c.Beam),
			strconv.FormatFloat(c.Offset.RA, 'f', 4, 64),
			strconv.FormatFloat(c.Offset.Dec, 'f', 4, 64),
			strconv.Itoa(c.Points.Len()),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing offset for beam %02d: %w", c.Beam, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveOffsetTable writes the per-beam offset CSV to a file.
func SaveOffsetTable(path string, cats []*Catalogue) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating offset table: %w", err)
	}
	defer f.Close()

	if err := WriteOffsetTable(f, cats); err != nil {
		return err
	}
	return f.Sync()
}
