package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FeatureCollection is a minimal GeoJSON feature collection. Geometries are
// kept as-is; only Point and Polygon coordinates are interpreted by the
// helpers below.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *Geometry              `json:"geometry"`
}

type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func ReadFile(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fc := &FeatureCollection{}
	if err := json.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse %s as GeoJSON: %w", path, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%s is not a GeoJSON FeatureCollection", path)
	}

	return fc, nil
}

// WriteFile saves a derived feature collection under dir and returns its
// path. Tool results always reference the new file so later steps can chain
// on it.
func WriteFile(dir, namePrefix string, fc *FeatureCollection) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, namePrefix+"_result.geojson")
	data, err := json.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("failed to encode feature collection: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

// Columns returns the union of property names across features, sorted so
// summaries are stable across runs.
func (fc *FeatureCollection) Columns() []string {
	seen := make(map[string]bool)
	var columns []string
	for _, f := range fc.Features {
		for key := range f.Properties {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

// GeometryTypes returns the distinct geometry types present, in first-seen
// order.
func (fc *FeatureCollection) GeometryTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if !seen[f.Geometry.Type] {
			seen[f.Geometry.Type] = true
			types = append(types, f.Geometry.Type)
		}
	}
	return types
}
