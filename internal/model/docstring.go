package model

import (
	"encoding/json"
	"errors"
)

// DocStringAsEntity parses the step's doc string as JSON. The result is
// computed on every call.
func (s *Step) DocStringAsEntity() (any, error) {
	var v any
	if err := s.DocStringInto(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DocStringInto parses the step's doc string as JSON into v.
func (s *Step) DocStringInto(v any) error {
	if err := json.Unmarshal([]byte(s.DocString), v); err != nil {
		pe := &ParseError{Err: err}
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			pe.Offset = syntax.Offset
		}
		return pe
	}
	return nil
}

func (s *Step) TableAsEntity() (map[string]any, error) {
	return s.Table.AsEntity()
}

func (s *Step) TableAsList() ([][]any, error) {
	return s.Table.AsList()
}

func (s *Step) TableAsSingleList() ([]any, error) {
	return s.Table.AsSingleList()
}
