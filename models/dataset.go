package models

// DatasetDescriptor is the catalog metadata for one geospatial dataset.
// Filename is the dedup key within a run; descriptors are immutable after
// retrieval.
type DatasetDescriptor struct {
	Filename    string   `json:"filename"`
	Source      string   `json:"source"`
	Category    string   `json:"category"`
	Columns     []string `json:"columns"`
	Description string   `json:"description"`
}
