package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/antoniamayaobrador/lisbon-agent/services/geo"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnalyzeDataTool evaluates one expression of a small analysis language over
// a dataset's feature properties. It deliberately replaces free-form code
// execution: the evaluator has no access to anything beyond the named file.
//
// Grammar:
//
//	expr   := agg [ "where" filter ]
//	agg    := "count" | "sum(" col ")" | "mean(" col ")" | "min(" col ")" | "max(" col ")"
//	filter := col op value
//	op     := "=" | "!=" | ">" | ">=" | "<" | "<="
type AnalyzeDataTool struct{}

type AnalyzeDataToolInput struct {
	FilePath   string `json:"file_path" jsonschema:"required,description=Path to the GeoJSON file to analyze"`
	Expression string `json:"expression" jsonschema:"required,description=Analysis expression, e.g. 'mean(price) where freguesia = \"Avenidas Novas\"' or 'count where noise_db > 65'"`
}

func (t AnalyzeDataTool) Name() string {
	return "analyze_data"
}

func (t AnalyzeDataTool) Description() string {
	return "Evaluates an aggregation expression (count, sum, mean, min, max over a column) with an optional 'where column op value' filter against a GeoJSON dataset."
}

func (t AnalyzeDataTool) Call(ctx context.Context, input string) (string, error) {
	var params AnalyzeDataToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse analyze data tool input: %v", err)
	}

	fc, err := geo.ReadFile(params.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to load dataset: %v", err)
	}

	query, err := parseAnalysisExpression(params.Expression)
	if err != nil {
		return "", err
	}

	return query.evaluate(fc)
}

func (t AnalyzeDataTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[AnalyzeDataToolInput]()
}

type analysisQuery struct {
	aggregate string
	column    string
	filter    *analysisFilter
}

type analysisFilter struct {
	column string
	op     string
	value  string
}

func parseAnalysisExpression(expression string) (*analysisQuery, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("empty analysis expression")
	}

	aggPart := expression
	var filterPart string
	if idx := strings.Index(strings.ToLower(expression), " where "); idx >= 0 {
		aggPart = strings.TrimSpace(expression[:idx])
		filterPart = strings.TrimSpace(expression[idx+len(" where "):])
	}

	query := &analysisQuery{}
	lower := strings.ToLower(aggPart)
	switch {
	case lower == "count":
		query.aggregate = "count"
	case strings.HasSuffix(aggPart, ")"):
		open := strings.Index(aggPart, "(")
		if open <= 0 {
			return nil, fmt.Errorf("invalid aggregation %q", aggPart)
		}
		query.aggregate = strings.ToLower(strings.TrimSpace(aggPart[:open]))
		query.column = strings.TrimSpace(aggPart[open+1 : len(aggPart)-1])
		switch query.aggregate {
		case "sum", "mean", "min", "max":
		default:
			return nil, fmt.Errorf("unknown aggregation %q", query.aggregate)
		}
		if query.column == "" {
			return nil, fmt.Errorf("aggregation %s requires a column", query.aggregate)
		}
	default:
		return nil, fmt.Errorf("invalid aggregation %q, expected count, sum(col), mean(col), min(col) or max(col)", aggPart)
	}

	if filterPart != "" {
		filter, err := parseAnalysisFilter(filterPart)
		if err != nil {
			return nil, err
		}
		query.filter = filter
	}

	return query, nil
}

func parseAnalysisFilter(filterPart string) (*analysisFilter, error) {
	// Two-character operators first so ">=" is not read as ">".
	for _, op := range []string{"!=", ">=", "<=", "=", ">", "<"} {
		idx := strings.Index(filterPart, op)
		if idx <= 0 {
			continue
		}
		column := strings.TrimSpace(filterPart[:idx])
		value := strings.TrimSpace(filterPart[idx+len(op):])
		value = strings.Trim(value, `"'`)
		if column == "" || value == "" {
			return nil, fmt.Errorf("invalid filter %q", filterPart)
		}
		return &analysisFilter{column: column, op: op, value: value}, nil
	}
	return nil, fmt.Errorf("invalid filter %q, expected <column> <op> <value>", filterPart)
}

func (q *analysisQuery) evaluate(fc *geo.FeatureCollection) (string, error) {
	var matched int
	var values []float64

	for _, f := range fc.Features {
		if q.filter != nil && !q.filter.matches(f.Properties) {
			continue
		}
		matched++
		if q.column == "" {
			continue
		}
		if v, ok := numericProperty(f.Properties, q.column); ok {
			values = append(values, v)
		}
	}

	switch q.aggregate {
	case "count":
		return fmt.Sprintf("count = %d", matched), nil
	case "sum":
		return fmt.Sprintf("sum(%s) = %s", q.column, formatNumber(sumOf(values))), nil
	case "mean":
		if len(values) == 0 {
			return "", fmt.Errorf("no numeric values in column %q", q.column)
		}
		return fmt.Sprintf("mean(%s) = %s", q.column, formatNumber(sumOf(values)/float64(len(values)))), nil
	case "min":
		if len(values) == 0 {
			return "", fmt.Errorf("no numeric values in column %q", q.column)
		}
		minV := values[0]
		for _, v := range values[1:] {
			minV = math.Min(minV, v)
		}
		return fmt.Sprintf("min(%s) = %s", q.column, formatNumber(minV)), nil
	case "max":
		if len(values) == 0 {
			return "", fmt.Errorf("no numeric values in column %q", q.column)
		}
		maxV := values[0]
		for _, v := range values[1:] {
			maxV = math.Max(maxV, v)
		}
		return fmt.Sprintf("max(%s) = %s", q.column, formatNumber(maxV)), nil
	}
	return "", fmt.Errorf("unknown aggregation %q", q.aggregate)
}

func (f *analysisFilter) matches(props map[string]interface{}) bool {
	actual, ok := props[f.column]
	if !ok || actual == nil {
		return false
	}

	actualNum, actualIsNum := toFloat(actual)
	wantNum, wantIsNum := parseFloat(f.value)
	if actualIsNum && wantIsNum {
		switch f.op {
		case "=":
			return actualNum == wantNum
		case "!=":
			return actualNum != wantNum
		case ">":
			return actualNum > wantNum
		case ">=":
			return actualNum >= wantNum
		case "<":
			return actualNum < wantNum
		case "<=":
			return actualNum <= wantNum
		}
		return false
	}

	actualStr := fmt.Sprintf("%v", actual)
	switch f.op {
	case "=":
		return strings.EqualFold(actualStr, f.value)
	case "!=":
		return !strings.EqualFold(actualStr, f.value)
	}
	// Ordering comparisons on non-numeric values never match.
	return false
}

func numericProperty(props map[string]interface{}, column string) (float64, bool) {
	value, ok := props[column]
	if !ok {
		return 0, false
	}
	return toFloat(value)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return parseFloat(v)
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func sumOf(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
