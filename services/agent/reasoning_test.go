package agent

import (
	"strings"
	"testing"

	"github.com/antoniamayaobrador/lisbon-agent/models"
)

func TestAppendPlotReference(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "bare plot path gets an inline image",
			content:  "The distribution is saved at data/plots/plot_9f3a.png",
			expected: "The distribution is saved at data/plots/plot_9f3a.png\n\n![Generated Plot](data/plots/plot_9f3a.png)",
		},
		{
			name:     "existing inline image is left alone",
			content:  "Here it is: ![Generated Plot](data/plots/plot_9f3a.png)",
			expected: "Here it is: ![Generated Plot](data/plots/plot_9f3a.png)",
		},
		{
			name:     "no plot path is a no-op",
			content:  "There are 42 restaurants in Avenidas Novas.",
			expected: "There are 42 restaurants in Avenidas Novas.",
		},
		{
			name:     "only the first path gets referenced",
			content:  "See data/plots/a.png and data/plots/b.png",
			expected: "See data/plots/a.png and data/plots/b.png\n\n![Generated Plot](data/plots/a.png)",
		},
		{
			name:     "png mention without plots dir is a no-op",
			content:  "I saved image.png somewhere",
			expected: "I saved image.png somewhere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := appendPlotReference(tt.content); got != tt.expected {
				t.Errorf("appendPlotReference() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestAppendPlotReferenceIsIdempotent(t *testing.T) {
	content := "Plot saved to data/plots/plot_9f3a.png"

	once := appendPlotReference(content)
	twice := appendPlotReference(once)

	if once != twice {
		t.Errorf("second pass changed content:\nfirst:  %q\nsecond: %q", once, twice)
	}
	if strings.Count(twice, "![Generated Plot]") != 1 {
		t.Errorf("expected exactly one inline reference, got %q", twice)
	}
}

func TestBuildDatasetContext(t *testing.T) {
	datasets := []models.DatasetDescriptor{
		{Filename: "restaurants.geojson", Source: "data/tourism/restaurants.geojson", Description: "Restaurants in Lisbon"},
		{Filename: "noise.geojson", Source: "data/environment/noise.geojson", Description: "Noise measurements"},
	}

	context := buildDatasetContext(datasets)

	expected := "- restaurants.geojson (Path: data/tourism/restaurants.geojson): Restaurants in Lisbon\n" +
		"- noise.geojson (Path: data/environment/noise.geojson): Noise measurements"
	if context != expected {
		t.Errorf("buildDatasetContext() = %q, expected %q", context, expected)
	}

	if got := buildDatasetContext(nil); got != "(no datasets retrieved)" {
		t.Errorf("buildDatasetContext(nil) = %q", got)
	}
}
