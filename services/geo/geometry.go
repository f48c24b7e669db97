package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// Centroid returns a representative lon/lat for a feature: the point itself
// for Point geometries, the vertex average for Polygon and LineString.
func (f *Feature) Centroid() (lon, lat float64, err error) {
	if f.Geometry == nil {
		return 0, 0, fmt.Errorf("feature has no geometry")
	}

	switch f.Geometry.Type {
	case "Point":
		var coords []float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil || len(coords) < 2 {
			return 0, 0, fmt.Errorf("invalid Point coordinates")
		}
		return coords[0], coords[1], nil
	case "LineString":
		var coords [][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
			return 0, 0, fmt.Errorf("invalid LineString coordinates")
		}
		return averageOf(coords)
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil || len(rings) == 0 {
			return 0, 0, fmt.Errorf("invalid Polygon coordinates")
		}
		return averageOf(rings[0])
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &polys); err != nil || len(polys) == 0 || len(polys[0]) == 0 {
			return 0, 0, fmt.Errorf("invalid MultiPolygon coordinates")
		}
		return averageOf(polys[0][0])
	default:
		return 0, 0, fmt.Errorf("unsupported geometry type %s", f.Geometry.Type)
	}
}

func averageOf(coords [][]float64) (float64, float64, error) {
	if len(coords) == 0 {
		return 0, 0, fmt.Errorf("empty coordinate list")
	}
	var sumLon, sumLat float64
	for _, c := range coords {
		if len(c) < 2 {
			return 0, 0, fmt.Errorf("invalid coordinate pair")
		}
		sumLon += c[0]
		sumLat += c[1]
	}
	n := float64(len(coords))
	return sumLon / n, sumLat / n, nil
}

// HaversineMeters is the great-circle distance between two lon/lat points.
func HaversineMeters(lon1, lat1, lon2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Contains reports whether the feature's polygon contains the given lon/lat.
// Only Polygon and MultiPolygon geometries can contain points.
func (f *Feature) Contains(lon, lat float64) bool {
	if f.Geometry == nil {
		return false
	}

	switch f.Geometry.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
			return false
		}
		return polygonContains(rings, lon, lat)
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &polys); err != nil {
			return false
		}
		for _, rings := range polys {
			if polygonContains(rings, lon, lat) {
				return true
			}
		}
	}
	return false
}

// Intersects reports whether the feature touches the polygon feature: a
// vertex falls inside it, an edge crosses one of its ring edges, or the
// polygon sits entirely inside this feature. Edges that only share an
// endpoint are not counted.
func (f *Feature) Intersects(polygon *Feature) bool {
	paths := f.vertexPaths()
	rings := polygon.polygonRings()
	if len(paths) == 0 || len(rings) == 0 {
		return false
	}

	for _, path := range paths {
		for _, pt := range path {
			if len(pt) >= 2 && polygon.Contains(pt[0], pt[1]) {
				return true
			}
		}
	}

	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			for _, ring := range rings {
				for j := 0; j+1 < len(ring); j++ {
					if segmentsCross(path[i], path[i+1], ring[j], ring[j+1]) {
						return true
					}
				}
			}
		}
	}

	for _, ring := range rings {
		for _, pt := range ring {
			if len(pt) >= 2 && f.Contains(pt[0], pt[1]) {
				return true
			}
		}
	}

	return false
}

// vertexPaths flattens the geometry into coordinate paths: the point itself,
// the line's vertices, or every polygon ring.
func (f *Feature) vertexPaths() [][][]float64 {
	if f.Geometry == nil {
		return nil
	}

	switch f.Geometry.Type {
	case "Point":
		var c []float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &c); err != nil || len(c) < 2 {
			return nil
		}
		return [][][]float64{{c}}
	case "LineString":
		var coords [][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil {
			return nil
		}
		return [][][]float64{coords}
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
			return nil
		}
		return rings
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &polys); err != nil {
			return nil
		}
		var rings [][][]float64
		for _, p := range polys {
			rings = append(rings, p...)
		}
		return rings
	}
	return nil
}

func (f *Feature) polygonRings() [][][]float64 {
	if f.Geometry == nil {
		return nil
	}
	switch f.Geometry.Type {
	case "Polygon", "MultiPolygon":
		return f.vertexPaths()
	}
	return nil
}

// segmentsCross reports a proper crossing of segments ab and cd.
func segmentsCross(a, b, c, d []float64) bool {
	if len(a) < 2 || len(b) < 2 || len(c) < 2 || len(d) < 2 {
		return false
	}
	d1 := crossProduct(c, d, a)
	d2 := crossProduct(c, d, b)
	d3 := crossProduct(a, b, c)
	d4 := crossProduct(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func crossProduct(a, b, c []float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// polygonContains does ray casting against the outer ring, then excludes
// holes.
func polygonContains(rings [][][]float64, lon, lat float64) bool {
	if len(rings) == 0 || !ringContains(rings[0], lon, lat) {
		return false
	}
	for _, hole := range rings[1:] {
		if ringContains(hole, lon, lat) {
			return false
		}
	}
	return true
}

func ringContains(ring [][]float64, lon, lat float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
