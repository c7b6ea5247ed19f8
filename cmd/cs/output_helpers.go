package main

import (
	"encoding/json"
	"io"
)

// writeJSON writes value as indented JSON, the format of --json output.
func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
