package sky

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ExportGeoJSON converts the aligned source positions into a GeoJSON
// FeatureCollection, one point feature per source. RA maps to longitude
// (wrapped into [-180, 180]) and Dec to latitude, which is enough for any
// GeoJSON viewer to show the footprint. Each feature carries its beam
// number, fixed flag and the beam's cumulative offset.
func ExportGeoJSON(cats []*Catalogue) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range cats {
		for _, p := range c.Points.Points() {
			lon := p.RA
			if lon > 180 {
				lon -= 360
			}
			f := geojson.NewFeature(orb.Point{lon, p.Dec})
			f.Properties["beam"] = c.Beam
			f.Properties["fixed"] = c.Fixed
			f.Properties["ra_offset_arcsec"] = c.Offset.RA
			f.Properties["dec_offset_arcsec"] = c.Offset.Dec
			fc.Append(f)
		}
	}
	return fc
}

// SaveGeoJSON writes the aligned catalogues to a GeoJSON file.
func SaveGeoJSON(path string, cats []*Catalogue) error {
	fc := ExportGeoJSON(cats)
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing GeoJSON file: %w", err)
	}
	return nil
}
