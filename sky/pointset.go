package sky

import "math"

const (
	degToRad     = math.Pi / 180.0
	arcsecPerDeg = 3600.0

	// cosDecFloor keeps the RA foreshortening correction finite at the poles.
	cosDecFloor = 1e-9
)

// PointSet is an ordered, immutable collection of sky positions.
// Shift returns a new set; the ordering never changes, so indices stay
// valid across shifts.
type PointSet struct {
	points []SkyPoint
}

// NewPointSet wraps a slice of positions. The slice is copied so later
// mutation by the caller cannot leak into the set.
func NewPointSet(points []SkyPoint) *PointSet {
	ps := &PointSet{points: make([]SkyPoint, len(points))}
	copy(ps.points, points)
	for i := range ps.points {
		ps.points[i].RA = normalizeRA(ps.points[i].RA)
	}
	return ps
}

// Len returns the number of points in the set.
func (ps *PointSet) Len() int {
	return len(ps.points)
}

// At returns the point at index i.
func (ps *PointSet) At(i int) SkyPoint {
	return ps.points[i]
}

// Points returns the backing slice. Callers must treat it as read-only.
func (ps *PointSet) Points() []SkyPoint {
	return ps.points
}

// Shift returns a new set with every point moved by the inverse of the
// given offset, so a catalogue measured to sit at +off relative to a
// reference lands on the reference after Shift(off). The RA component is
// a great-circle distance and is widened back by cos(Dec) before being
// subtracted from the coordinate.
func (ps *PointSet) Shift(off Offset) *PointSet {
	if off.IsZero() {
		return ps
	}
	shifted := make([]SkyPoint, len(ps.points))
	for i, p := range ps.points {
		cosDec := math.Cos(p.Dec * degToRad)
		if math.Abs(cosDec) < cosDecFloor {
			cosDec = math.Copysign(cosDecFloor, cosDec)
		}
		shifted[i] = SkyPoint{
			RA:  normalizeRA(p.RA - off.RA/arcsecPerDeg/cosDec),
			Dec: p.Dec - off.Dec/arcsecPerDeg,
		}
	}
	return &PointSet{points: shifted}
}

// Separation returns the great-circle distance between two positions in
// arcseconds, via the haversine formula.
func Separation(a, b SkyPoint) float64 {
	ra1 := a.RA * degToRad
	ra2 := b.RA * degToRad
	dec1 := a.Dec * degToRad
	dec2 := b.Dec * degToRad

	sinDec := math.Sin((dec2 - dec1) / 2)
	sinRA := math.Sin((ra2 - ra1) / 2)
	h := sinDec*sinDec + math.Cos(dec1)*math.Cos(dec2)*sinRA*sinRA
	if h > 1 {
		h = 1
	}
	return 2 * math.Asin(math.Sqrt(h)) / degToRad * arcsecPerDeg
}

// PairOffset decomposes the position of b relative to a into per-axis
// arcsecond offsets. The RA delta is wrapped into (-180, 180] degrees and
// scaled by cos of the mean declination so both axes are great-circle
// distances.
func PairOffset(a, b SkyPoint) Offset {
	dRA := b.RA - a.RA
	if dRA > 180 {
		dRA -= 360
	} else if dRA <= -180 {
		dRA += 360
	}
	cosDec := math.Cos((a.Dec + b.Dec) / 2 * degToRad)
	return Offset{
		RA:  dRA * cosDec * arcsecPerDeg,
		Dec: (b.Dec - a.Dec) * arcsecPerDeg,
	}
}

// EstimateCentre returns the spherical mean of a set of positions,
// computed by averaging unit vectors. Safe across the RA wrap, unlike a
// naive coordinate mean.
func EstimateCentre(points []SkyPoint) SkyPoint {
	if len(points) == 0 {
		return SkyPoint{}
	}
	var x, y, z float64
	for _, p := range points {
		ra := p.RA * degToRad
		dec := p.Dec * degToRad
		x += math.Cos(dec) * math.Cos(ra)
		y += math.Cos(dec) * math.Sin(ra)
		z += math.Sin(dec)
	}
	n := float64(len(points))
	x /= n
	y /= n
	z /= n

	ra := math.Atan2(y, x) / degToRad
	dec := math.Atan2(z, math.Hypot(x, y)) / degToRad
	return SkyPoint{RA: normalizeRA(ra), Dec: dec}
}

// normalizeRA wraps a right ascension into [0, 360).
func normalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return ra
}
