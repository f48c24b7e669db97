package agent

import (
	"context"
	"encoding/json"
	"image/png"
	"os"
	"strings"
	"testing"
)

func TestPlotDataRendersMap(t *testing.T) {
	data := writeFixture(t, "points.geojson", pointsFixture)

	tool := NewPlotDataTool(t.TempDir())
	input, _ := json.Marshal(PlotDataToolInput{FilePath: data})

	result, err := tool.Call(context.Background(), string(input))
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}

	path := strings.TrimPrefix(result, "Saved plot to ")
	if path == result {
		t.Fatalf("unexpected result format: %q", result)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("plot path = %q, expected a .png artifact", path)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open plot artifact: %v", err)
	}
	defer file.Close()
	if _, err := png.Decode(file); err != nil {
		t.Errorf("plot artifact is not a valid PNG: %v", err)
	}
}

func TestPlotDataRendersHistogram(t *testing.T) {
	data := writeFixture(t, "housing.geojson", housingFixture)

	tool := NewPlotDataTool(t.TempDir())
	input, _ := json.Marshal(PlotDataToolInput{
		FilePath: data,
		PlotType: "histogram",
		Column:   "price",
		Title:    "Housing prices",
	})

	result, err := tool.Call(context.Background(), string(input))
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}

	path := strings.TrimPrefix(result, "Saved plot to ")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("plot artifact missing: %v", err)
	}
}

func TestPlotDataRejectsBadInput(t *testing.T) {
	data := writeFixture(t, "housing.geojson", housingFixture)
	tool := NewPlotDataTool(t.TempDir())

	tests := []struct {
		name  string
		input PlotDataToolInput
	}{
		{"unknown plot type", PlotDataToolInput{FilePath: data, PlotType: "pie"}},
		{"histogram without column", PlotDataToolInput{FilePath: data, PlotType: "histogram"}},
		{"histogram of text column", PlotDataToolInput{FilePath: data, PlotType: "histogram", Column: "freguesia"}},
		{"missing file", PlotDataToolInput{FilePath: "does/not/exist.geojson"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, _ := json.Marshal(tt.input)
			if _, err := tool.Call(context.Background(), string(input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
