package collection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ImportMode selects how imported groups are merged into the store.
type ImportMode int

const (
	// ImportReplace discards the current tree.
	ImportReplace ImportMode = iota
	// ImportAppend concatenates imported groups after the current ones.
	ImportAppend
)

func (m ImportMode) String() string {
	switch m {
	case ImportAppend:
		return "append"
	default:
		return "replace"
	}
}

// ParseImportMode maps "replace" and "append" to an ImportMode.
func ParseImportMode(value string) (ImportMode, error) {
	switch value {
	case "replace":
		return ImportReplace, nil
	case "append":
		return ImportAppend, nil
	default:
		return ImportReplace, &ValidationError{Reason: fmt.Sprintf("unknown import mode %q", value)}
	}
}

// Encode writes groups as pretty-printed JSON with two-space indentation.
func Encode(w io.Writer, groups []Group) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Clone(groups)); err != nil {
		return fmt.Errorf("encode collections: %w", err)
	}
	return nil
}

// Decode parses an exported document. The top level must be a JSON array.
func Decode(r io.Reader) ([]Group, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	return DecodeBytes(raw)
}

// DecodeBytes is Decode for an in-memory document.
func DecodeBytes(raw []byte) ([]Group, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return nil, &ValidationError{Reason: "invalid JSON"}
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ValidationError{Reason: "invalid JSON format: must be an array"}
	}
	var groups []Group
	if err := json.Unmarshal(trimmed, &groups); err != nil {
		return nil, &ValidationError{Reason: "invalid collection document", Err: err}
	}
	return Clone(groups), nil
}

func marshalCompact(groups []Group) ([]byte, error) {
	data, err := json.Marshal(groups)
	if err != nil {
		return nil, fmt.Errorf("marshal collections: %w", err)
	}
	return data, nil
}
