package types

import (
	"encoding/json"
	"fmt"
)

// MetadataSource identifies the enrichment pass that produced a
// cleaned entry's metadata
const MetadataSource = "textpress"

// Metadata is the structured record computed by the enricher and
// persisted as JSON alongside each cleaned entry
type Metadata struct {
	Source             string   `json:"source"`
	WordCount          int      `json:"word_count"`
	CharCount          int      `json:"char_count"`
	LanguageGuess      string   `json:"language_guess"`
	Tags               []string `json:"tags"`
	ReadingTimeMinutes int      `json:"reading_time_minutes"`
	ProcessedAt        string   `json:"processed_at"` // UTC ISO-8601, second precision
}

// MarshalJSONString serializes the metadata for storage
func (m Metadata) MarshalJSONString() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(b), nil
}

// ParseMetadata deserializes a stored metadata record
func ParseMetadata(raw string) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	return m, nil
}
