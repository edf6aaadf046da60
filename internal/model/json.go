package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON encodes features in the wire form read by the viewer.
func WriteJSON(w io.Writer, features []*Feature) error {
	if features == nil {
		features = []*Feature{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(features)
}

// ReadJSON decodes the wire form back into model entities.
func ReadJSON(r io.Reader) ([]*Feature, error) {
	var features []*Feature
	if err := json.NewDecoder(r).Decode(&features); err != nil {
		return nil, fmt.Errorf("decoding features: %w", err)
	}
	return features, nil
}
