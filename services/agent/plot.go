package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/antoniamayaobrador/lisbon-agent/services/geo"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type PlotDataToolInput struct {
	FilePath string `json:"file_path" jsonschema:"required,description=Path to the GeoJSON file to plot"`
	PlotType string `json:"plot_type,omitempty" jsonschema:"description=Plot type: 'map' (feature locations) or 'histogram' (distribution of a numeric column). Default: map"`
	Column   string `json:"column,omitempty" jsonschema:"description=Numeric column to plot, required for histogram"`
	Title    string `json:"title,omitempty" jsonschema:"description=Plot title"`
}

// PlotDataTool renders a dataset to a PNG artifact under the plots directory
// and returns its path. Replies that mention the path get an inline image
// reference appended by the reasoning stage.
type PlotDataTool struct {
	plotsDir string
}

func NewPlotDataTool(plotsDir string) PlotDataTool {
	return PlotDataTool{plotsDir: plotsDir}
}

func (t PlotDataTool) Name() string {
	return "plot_data"
}

func (t PlotDataTool) Description() string {
	return "Renders a GeoJSON dataset to a PNG plot: 'map' draws feature locations, 'histogram' draws the distribution of a numeric column. Returns the path to the PNG file."
}

func (t PlotDataTool) Call(ctx context.Context, input string) (string, error) {
	var params PlotDataToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse plot data tool input: %v", err)
	}
	if params.PlotType == "" {
		params.PlotType = "map"
	}

	fc, err := geo.ReadFile(params.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to load dataset: %v", err)
	}

	p := plot.New()
	p.Title.Text = params.Title
	if p.Title.Text == "" {
		p.Title.Text = filepath.Base(params.FilePath)
	}

	switch params.PlotType {
	case "map":
		var points plotter.XYs
		for _, f := range fc.Features {
			lon, lat, err := f.Centroid()
			if err != nil {
				continue
			}
			points = append(points, plotter.XY{X: lon, Y: lat})
		}
		if len(points) == 0 {
			return "", fmt.Errorf("no plottable features in %s", params.FilePath)
		}
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return "", fmt.Errorf("failed to build map plot: %v", err)
		}
		p.X.Label.Text = "longitude"
		p.Y.Label.Text = "latitude"
		p.Add(scatter)
	case "histogram":
		if params.Column == "" {
			return "", fmt.Errorf("histogram plots require a column")
		}
		var values plotter.Values
		for _, f := range fc.Features {
			if v, ok := numericProperty(f.Properties, params.Column); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return "", fmt.Errorf("no numeric values in column %q", params.Column)
		}
		hist, err := plotter.NewHist(values, 16)
		if err != nil {
			return "", fmt.Errorf("failed to build histogram: %v", err)
		}
		p.X.Label.Text = params.Column
		p.Add(hist)
	default:
		return "", fmt.Errorf("unknown plot type %q, expected map or histogram", params.PlotType)
	}

	if err := os.MkdirAll(t.plotsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create plots directory: %v", err)
	}
	name := fmt.Sprintf("plot_%s.png", strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	path := filepath.Join(t.plotsDir, name)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("failed to save plot: %v", err)
	}

	return fmt.Sprintf("Saved plot to %s", path), nil
}

func (t PlotDataTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[PlotDataToolInput]()
}
