package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antoniamayaobrador/lisbon-agent/services/geo"

	"github.com/anthropics/anthropic-sdk-go"
)

const (
	tavilyEndpoint   = "https://api.tavily.com/search"
	overpassEndpoint = "https://overpass-api.de/api/interpreter"
)

type WebSearchToolInput struct {
	Query string `json:"query" jsonschema:"required,description=The search query"`
}

// WebSearchTool finds qualitative information (reviews, opening hours,
// facts) the dataset corpus does not carry.
type WebSearchTool struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewWebSearchTool(apiKey string) WebSearchTool {
	return WebSearchTool{
		apiKey:   apiKey,
		endpoint: tavilyEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (t WebSearchTool) Name() string {
	return "web_search"
}

func (t WebSearchTool) Description() string {
	return "Performs a web search to find information, reviews, ratings, opening hours or facts about specific places. Useful when the answer is not in the datasets."
}

func (t WebSearchTool) Call(ctx context.Context, input string) (string, error) {
	var params WebSearchToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse web search tool input: %v", err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"api_key":     t.apiKey,
		"query":       params.Query,
		"max_results": 3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode search request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build search request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("search request returned status %d: %s", resp.StatusCode, payload)
	}

	var searchResponse struct {
		Results []struct {
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResponse); err != nil {
		return "", fmt.Errorf("failed to decode search response: %v", err)
	}

	if len(searchResponse.Results) == 0 {
		return "No search results found.", nil
	}

	var lines []string
	for _, r := range searchResponse.Results {
		lines = append(lines, fmt.Sprintf("- %s (Source: %s)", r.Content, r.URL))
	}
	return strings.Join(lines, "\n"), nil
}

func (t WebSearchTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[WebSearchToolInput]()
}

type StreetNetworkToolInput struct {
	PlaceName   string `json:"place_name" jsonschema:"required,description=The place to fetch streets for, e.g. 'Avenidas Novas, Lisbon'"`
	NetworkType string `json:"network_type,omitempty" jsonschema:"description=Network type: 'drive', 'walk', 'bike' or 'all' (default: drive)"`
}

// StreetNetworkTool fetches street geometry for a place from the Overpass
// OpenStreetMap API and saves it as a GeoJSON line dataset.
type StreetNetworkTool struct {
	outputDir string
	endpoint  string
	client    *http.Client
}

func NewStreetNetworkTool(outputDir string) StreetNetworkTool {
	return StreetNetworkTool{
		outputDir: outputDir,
		endpoint:  overpassEndpoint,
		client:    &http.Client{Timeout: 90 * time.Second},
	}
}

func (t StreetNetworkTool) Name() string {
	return "get_street_network"
}

func (t StreetNetworkTool) Description() string {
	return "Fetches the street network for a place from OpenStreetMap. Network types: 'drive', 'walk', 'bike', 'all'. Returns the path to a GeoJSON file with the streets."
}

// highwayFilters mirror the usual OSM network-type selections.
var highwayFilters = map[string]string{
	"drive": "motorway|trunk|primary|secondary|tertiary|unclassified|residential",
	"walk":  "footway|path|pedestrian|steps|living_street|residential",
	"bike":  "cycleway|residential|tertiary|secondary|primary",
	"all":   ".*",
}

func (t StreetNetworkTool) Call(ctx context.Context, input string) (string, error) {
	var params StreetNetworkToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse street network tool input: %v", err)
	}
	if params.NetworkType == "" {
		params.NetworkType = "drive"
	}
	filter, ok := highwayFilters[params.NetworkType]
	if !ok {
		return "", fmt.Errorf("unknown network type %q, expected drive, walk, bike or all", params.NetworkType)
	}

	query := fmt.Sprintf(`[out:json][timeout:60];
area["name"="%s"]->.a;
way(area.a)["highway"~"%s"];
out geom;`, params.PlaceName, filter)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build Overpass request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Overpass request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Overpass returned status %d", resp.StatusCode)
	}

	var overpass struct {
		Elements []struct {
			ID       int64             `json:"id"`
			Tags     map[string]string `json:"tags"`
			Geometry []struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"geometry"`
		} `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&overpass); err != nil {
		return "", fmt.Errorf("failed to decode Overpass response: %v", err)
	}

	fc := &geo.FeatureCollection{Type: "FeatureCollection"}
	for _, el := range overpass.Elements {
		if len(el.Geometry) < 2 {
			continue
		}
		coords := make([][]float64, 0, len(el.Geometry))
		for _, point := range el.Geometry {
			coords = append(coords, []float64{point.Lon, point.Lat})
		}
		rawCoords, err := json.Marshal(coords)
		if err != nil {
			continue
		}
		props := map[string]interface{}{"osmid": el.ID}
		for _, key := range []string{"name", "highway", "oneway"} {
			if v, ok := el.Tags[key]; ok {
				props[key] = v
			}
		}
		fc.Features = append(fc.Features, geo.Feature{
			Type:       "Feature",
			Properties: props,
			Geometry:   &geo.Geometry{Type: "LineString", Coordinates: rawCoords},
		})
	}

	path, err := geo.WriteFile(t.outputDir, "streets_"+params.NetworkType, fc)
	if err != nil {
		return "", fmt.Errorf("failed to write street network: %v", err)
	}

	return fmt.Sprintf("Fetched street network for %q (%s). Saved to %s. Rows: %d.",
		params.PlaceName, params.NetworkType, path, len(fc.Features)), nil
}

func (t StreetNetworkTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[StreetNetworkToolInput]()
}
