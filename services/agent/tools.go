package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/antoniamayaobrador/lisbon-agent/services/geo"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// AgentTool is one capability the reasoning client may request. The set of
// tools is closed and registered at construction time; there is no dynamic
// lookup beyond the name-to-tool table the orchestrator builds from it.
type AgentTool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
	GetAnthropicToolSpec() anthropic.ToolInputSchemaParam
}

func generateAnthropicSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

// DefaultTools builds the full tool set. dataDir is where derived files are
// written, plotsDir is where plot artifacts land, and tavilyAPIKey serves the
// web search tool.
func DefaultTools(dataDir, plotsDir, tavilyAPIKey string) []AgentTool {
	return []AgentTool{
		InspectDatasetTool{},
		NewSpatialJoinTool(dataDir),
		NewAttributeJoinTool(dataDir),
		AnalyzeDataTool{},
		NewPlotDataTool(plotsDir),
		NewFindNearestTool(dataDir),
		NewStreetNetworkTool(dataDir),
		NewWebSearchTool(tavilyAPIKey),
	}
}

type InspectDatasetToolInput struct {
	FilePath string `json:"file_path" jsonschema:"required,description=Path to the GeoJSON file to inspect"`
}

type InspectDatasetTool struct{}

func (t InspectDatasetTool) Name() string {
	return "inspect_dataset"
}

func (t InspectDatasetTool) Description() string {
	return "Loads a GeoJSON file and returns a summary of its contents (row count, columns, geometry types). Use this to understand the data before joining or analyzing."
}

func (t InspectDatasetTool) Call(ctx context.Context, input string) (string, error) {
	var params InspectDatasetToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse inspect dataset tool input: %v", err)
	}

	fc, err := geo.ReadFile(params.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to load dataset: %v", err)
	}

	summary := fmt.Sprintf("Loaded %s. Rows: %d. Columns: %v\n",
		filepath.Base(params.FilePath), len(fc.Features), fc.Columns())
	summary += fmt.Sprintf("Geometry Types: %v\n", fc.GeometryTypes())
	return summary, nil
}

func (t InspectDatasetTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[InspectDatasetToolInput]()
}

type SpatialJoinToolInput struct {
	LeftFile  string `json:"left_file" jsonschema:"required,description=Path to the GeoJSON file whose features are kept"`
	RightFile string `json:"right_file" jsonschema:"required,description=Path to the GeoJSON file with polygon features to join against"`
	Predicate string `json:"predicate,omitempty" jsonschema:"description=Spatial predicate: 'within' or 'intersects' (default: within)"`
}

type SpatialJoinTool struct {
	outputDir string
}

func NewSpatialJoinTool(outputDir string) SpatialJoinTool {
	return SpatialJoinTool{outputDir: outputDir}
}

func (t SpatialJoinTool) Name() string {
	return "spatial_join"
}

func (t SpatialJoinTool) Description() string {
	return "Joins two GeoJSON files spatially: keeps left features falling inside right polygons and attaches the matching polygon's attributes. Returns the path to the resulting GeoJSON file."
}

func (t SpatialJoinTool) Call(ctx context.Context, input string) (string, error) {
	var params SpatialJoinToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse spatial join tool input: %v", err)
	}

	predicate := params.Predicate
	if predicate == "" {
		predicate = "within"
	}
	if predicate != "within" && predicate != "intersects" {
		return "", fmt.Errorf("unknown predicate %q, expected within or intersects", predicate)
	}

	left, err := geo.ReadFile(params.LeftFile)
	if err != nil {
		return "", fmt.Errorf("failed to load left file: %v", err)
	}
	right, err := geo.ReadFile(params.RightFile)
	if err != nil {
		return "", fmt.Errorf("failed to load right file: %v", err)
	}

	joined := &geo.FeatureCollection{Type: "FeatureCollection"}
	for _, lf := range left.Features {
		for _, rf := range right.Features {
			if !matchesPredicate(lf, rf, predicate) {
				continue
			}
			merged := geo.Feature{
				Type:       "Feature",
				Properties: mergeProperties(lf.Properties, rf.Properties),
				Geometry:   lf.Geometry,
			}
			joined.Features = append(joined.Features, merged)
			break
		}
	}

	path, err := geo.WriteFile(t.outputDir, "spatial_join", joined)
	if err != nil {
		return "", fmt.Errorf("failed to write spatial join result: %v", err)
	}
	return path, nil
}

func (t SpatialJoinTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[SpatialJoinToolInput]()
}

type AttributeJoinToolInput struct {
	LeftFile  string `json:"left_file" jsonschema:"required,description=Path to the left GeoJSON file"`
	RightFile string `json:"right_file" jsonschema:"required,description=Path to the right GeoJSON file"`
	LeftOn    string `json:"left_on" jsonschema:"required,description=Join column in the left file"`
	RightOn   string `json:"right_on" jsonschema:"required,description=Join column in the right file"`
}

type AttributeJoinTool struct {
	outputDir string
}

func NewAttributeJoinTool(outputDir string) AttributeJoinTool {
	return AttributeJoinTool{outputDir: outputDir}
}

func (t AttributeJoinTool) Name() string {
	return "attribute_join"
}

func (t AttributeJoinTool) Description() string {
	return "Joins two datasets on a common attribute column (inner join). Returns the path to the resulting GeoJSON file."
}

func (t AttributeJoinTool) Call(ctx context.Context, input string) (string, error) {
	var params AttributeJoinToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse attribute join tool input: %v", err)
	}

	left, err := geo.ReadFile(params.LeftFile)
	if err != nil {
		return "", fmt.Errorf("failed to load left file: %v", err)
	}
	right, err := geo.ReadFile(params.RightFile)
	if err != nil {
		return "", fmt.Errorf("failed to load right file: %v", err)
	}

	rightByKey := make(map[string][]geo.Feature)
	for _, rf := range right.Features {
		key := propertyString(rf.Properties, params.RightOn)
		if key != "" {
			rightByKey[key] = append(rightByKey[key], rf)
		}
	}

	joined := &geo.FeatureCollection{Type: "FeatureCollection"}
	for _, lf := range left.Features {
		key := propertyString(lf.Properties, params.LeftOn)
		for _, rf := range rightByKey[key] {
			joined.Features = append(joined.Features, geo.Feature{
				Type:       "Feature",
				Properties: mergeProperties(lf.Properties, rf.Properties),
				Geometry:   lf.Geometry,
			})
		}
	}

	path, err := geo.WriteFile(t.outputDir, "attr_join", joined)
	if err != nil {
		return "", fmt.Errorf("failed to write attribute join result: %v", err)
	}
	return path, nil
}

func (t AttributeJoinTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[AttributeJoinToolInput]()
}

type FindNearestToolInput struct {
	SourceFile string `json:"source_file" jsonschema:"required,description=Path to the GeoJSON file with source features"`
	TargetFile string `json:"target_file" jsonschema:"required,description=Path to the GeoJSON file with candidate features"`
	K          int    `json:"k,omitempty" jsonschema:"description=Number of nearest targets per source feature (default: 1)"`
}

type FindNearestTool struct {
	outputDir string
}

func NewFindNearestTool(outputDir string) FindNearestTool {
	return FindNearestTool{outputDir: outputDir}
}

func (t FindNearestTool) Name() string {
	return "find_nearest"
}

func (t FindNearestTool) Description() string {
	return "Finds the k nearest features in target_file for each feature in source_file, attaching the target attributes and a distance_m column. Returns the path to the resulting GeoJSON file."
}

func (t FindNearestTool) Call(ctx context.Context, input string) (string, error) {
	var params FindNearestToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse find nearest tool input: %v", err)
	}
	if params.K <= 0 {
		params.K = 1
	}

	src, err := geo.ReadFile(params.SourceFile)
	if err != nil {
		return "", fmt.Errorf("failed to load source file: %v", err)
	}
	tgt, err := geo.ReadFile(params.TargetFile)
	if err != nil {
		return "", fmt.Errorf("failed to load target file: %v", err)
	}

	type candidate struct {
		feature  geo.Feature
		distance float64
	}

	result := &geo.FeatureCollection{Type: "FeatureCollection"}
	for _, sf := range src.Features {
		sLon, sLat, err := sf.Centroid()
		if err != nil {
			continue
		}

		var candidates []candidate
		for _, tf := range tgt.Features {
			tLon, tLat, err := tf.Centroid()
			if err != nil {
				continue
			}
			candidates = append(candidates, candidate{
				feature:  tf,
				distance: geo.HaversineMeters(sLon, sLat, tLon, tLat),
			})
		}
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].distance < candidates[j].distance
		})

		if len(candidates) > params.K {
			candidates = candidates[:params.K]
		}
		for _, c := range candidates {
			props := mergeProperties(sf.Properties, c.feature.Properties)
			props["distance_m"] = c.distance
			result.Features = append(result.Features, geo.Feature{
				Type:       "Feature",
				Properties: props,
				Geometry:   sf.Geometry,
			})
		}
	}

	path, err := geo.WriteFile(t.outputDir, "nearest", result)
	if err != nil {
		return "", fmt.Errorf("failed to write nearest result: %v", err)
	}
	return path, nil
}

func (t FindNearestTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[FindNearestToolInput]()
}

// matchesPredicate evaluates one left feature against one right polygon.
// "within" tests the left centroid; "intersects" tests the full geometry.
func matchesPredicate(lf, rf geo.Feature, predicate string) bool {
	if predicate == "intersects" {
		return lf.Intersects(&rf)
	}
	lon, lat, err := lf.Centroid()
	if err != nil {
		return false
	}
	return rf.Contains(lon, lat)
}

// mergeProperties combines left and right attributes; conflicting right keys
// get a right_ prefix so no left attribute is lost.
func mergeProperties(left, right map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(left)+len(right))
	for k, v := range left {
		merged[k] = v
	}
	for k, v := range right {
		if _, exists := merged[k]; exists {
			merged["right_"+k] = v
		} else {
			merged[k] = v
		}
	}
	return merged
}

func propertyString(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	value, ok := props[key]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
