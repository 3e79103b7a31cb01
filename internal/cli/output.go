package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// parseJSONArg decodes a command-line JSON argument.
func parseJSONArg(name, arg string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return nil, userError("parse %s as JSON: %w", name, err)
	}
	return v, nil
}

// status is the --json output of commands that only report success.
type status struct {
	OK    bool   `json:"ok"`
	Key   string `json:"key,omitempty"`
	Scope string `json:"scope,omitempty"`
}
