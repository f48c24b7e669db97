package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/antoniamayaobrador/lisbon-agent/services/geo"
)

const pointsFixture = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"name": "inside"}, "geometry": {"type": "Point", "coordinates": [0.5, 0.5]}},
		{"type": "Feature", "properties": {"name": "outside"}, "geometry": {"type": "Point", "coordinates": [5, 5]}}
	]
}`

const polygonFixture = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"zone": "unit square"}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}
	]
}`

func TestInspectDatasetSummarizesFile(t *testing.T) {
	path := writeFixture(t, "points.geojson", pointsFixture)

	input, _ := json.Marshal(InspectDatasetToolInput{FilePath: path})
	summary, err := InspectDatasetTool{}.Call(context.Background(), string(input))
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}

	if !strings.Contains(summary, "Rows: 2") {
		t.Errorf("summary missing row count: %q", summary)
	}
	if !strings.Contains(summary, "name") {
		t.Errorf("summary missing column name: %q", summary)
	}
	if !strings.Contains(summary, "Point") {
		t.Errorf("summary missing geometry type: %q", summary)
	}
}

func TestInspectDatasetMissingFile(t *testing.T) {
	input, _ := json.Marshal(InspectDatasetToolInput{FilePath: "does/not/exist.geojson"})
	if _, err := (InspectDatasetTool{}).Call(context.Background(), string(input)); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestSpatialJoinKeepsContainedFeatures(t *testing.T) {
	dir := t.TempDir()
	left := writeFixture(t, "points.geojson", pointsFixture)
	right := writeFixture(t, "zones.geojson", polygonFixture)

	tool := NewSpatialJoinTool(dir)
	input, _ := json.Marshal(SpatialJoinToolInput{LeftFile: left, RightFile: right})

	path, err := tool.Call(context.Background(), string(input))
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}

	fc, err := geo.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read join result: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("join kept %d features, expected 1", len(fc.Features))
	}
	props := fc.Features[0].Properties
	if props["name"] != "inside" {
		t.Errorf("joined feature name = %v", props["name"])
	}
	if props["zone"] != "unit square" {
		t.Errorf("joined feature missing polygon attributes: %v", props)
	}
}

// crossingLineFixture is a line that passes through the unit square but has
// every vertex, and its vertex-average centroid, outside of it.
const crossingLineFixture = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"name": "avenue"}, "geometry": {"type": "LineString", "coordinates": [[-1,0.5],[2,0.5],[2,5],[-1,5]]}}
	]
}`

func TestSpatialJoinIntersectsKeepsCrossingFeature(t *testing.T) {
	dir := t.TempDir()
	left := writeFixture(t, "streets.geojson", crossingLineFixture)
	right := writeFixture(t, "zones.geojson", polygonFixture)

	tool := NewSpatialJoinTool(dir)

	input, _ := json.Marshal(SpatialJoinToolInput{LeftFile: left, RightFile: right, Predicate: "intersects"})
	path, err := tool.Call(context.Background(), string(input))
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}

	fc, err := geo.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read join result: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("intersects join kept %d features, expected 1", len(fc.Features))
	}
	if fc.Features[0].Properties["zone"] != "unit square" {
		t.Errorf("joined feature missing polygon attributes: %v", fc.Features[0].Properties)
	}

	// The same line's centroid is outside the square, so within drops it.
	input, _ = json.Marshal(SpatialJoinToolInput{LeftFile: left, RightFile: right, Predicate: "within"})
	path, err = tool.Call(context.Background(), string(input))
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	fc, err = geo.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read join result: %v", err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("within join kept %d features, expected 0", len(fc.Features))
	}
}

func TestSpatialJoinRejectsUnknownPredicate(t *testing.T) {
	left := writeFixture(t, "points.geojson", pointsFixture)
	right := writeFixture(t, "zones.geojson", polygonFixture)

	tool := NewSpatialJoinTool(t.TempDir())
	input, _ := json.Marshal(SpatialJoinToolInput{LeftFile: left, RightFile: right, Predicate: "touches"})

	if _, err := tool.Call(context.Background(), string(input)); err == nil {
		t.Error("expected error for unknown predicate, got nil")
	}
}

func TestAttributeJoinMatchesOnColumn(t *testing.T) {
	dir := t.TempDir()
	left := writeFixture(t, "left.geojson", `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"freguesia": "Belém", "shops": 12}, "geometry": {"type": "Point", "coordinates": [0, 0]}},
			{"type": "Feature", "properties": {"freguesia": "Areeiro", "shops": 7}, "geometry": {"type": "Point", "coordinates": [1, 1]}}
		]
	}`)
	right := writeFixture(t, "right.geojson", `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "Belém", "population": 16500}, "geometry": null}
		]
	}`)

	tool := NewAttributeJoinTool(dir)
	input, _ := json.Marshal(AttributeJoinToolInput{
		LeftFile: left, RightFile: right, LeftOn: "freguesia", RightOn: "name",
	})

	path, err := tool.Call(context.Background(), string(input))
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}

	fc, err := geo.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read join result: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("inner join kept %d features, expected 1", len(fc.Features))
	}
	props := fc.Features[0].Properties
	if props["population"] != float64(16500) {
		t.Errorf("joined feature population = %v", props["population"])
	}
}

func TestFindNearestAttachesDistance(t *testing.T) {
	dir := t.TempDir()
	source := writeFixture(t, "source.geojson", `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "station"}, "geometry": {"type": "Point", "coordinates": [-9.15, 38.74]}}
		]
	}`)
	target := writeFixture(t, "target.geojson", `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"name": "far cafe"}, "geometry": {"type": "Point", "coordinates": [-9.20, 38.70]}},
			{"type": "Feature", "properties": {"name": "near cafe"}, "geometry": {"type": "Point", "coordinates": [-9.151, 38.741]}}
		]
	}`)

	tool := NewFindNearestTool(dir)
	input, _ := json.Marshal(FindNearestToolInput{SourceFile: source, TargetFile: target})

	path, err := tool.Call(context.Background(), string(input))
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}

	fc, err := geo.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read nearest result: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("nearest produced %d features, expected 1", len(fc.Features))
	}
	props := fc.Features[0].Properties
	if props["right_name"] != "near cafe" && props["name"] != "near cafe" {
		t.Errorf("nearest picked wrong target: %v", props)
	}
	distance, ok := props["distance_m"].(float64)
	if !ok {
		t.Fatalf("distance_m missing or not numeric: %v", props["distance_m"])
	}
	if distance <= 0 || distance > 500 {
		t.Errorf("distance_m = %f, expected a few hundred meters", distance)
	}
}
