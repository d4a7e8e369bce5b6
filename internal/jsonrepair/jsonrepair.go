// Package jsonrepair fixes the JSON that language models almost produce.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	smartQuotes   = strings.NewReplacer("“", `"`, "”", `"`, "‘", `"`, "’", `"`)
)

// Repair applies minimal syntax fixes to a JSON-like string: smart and single
// quotes become double quotes, trailing commas before closing braces and
// brackets are dropped. Repair is idempotent.
func Repair(s string) string {
	s = smartQuotes.Replace(s)
	s = strings.ReplaceAll(s, "'", `"`)
	s = trailingComma.ReplaceAllString(s, "$1")
	return s
}

// Decode extracts the outermost JSON object or array from s and unmarshals
// into v, applying Repair only when the extracted text does not already
// parse. Models like to wrap their JSON in prose or code fences; everything
// outside the outer braces is discarded. Valid JSON passes through
// untouched so apostrophes in string values survive. Unrepairable input
// surfaces the unmarshal error.
func Decode(s string, v any) error {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return fmt.Errorf("jsonrepair: empty input")
	}
	if bounded := extract(raw, '{', '}'); bounded != "" {
		raw = bounded
	} else if bounded := extract(raw, '[', ']'); bounded != "" {
		raw = bounded
	}
	if json.Unmarshal([]byte(raw), v) == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(Repair(raw)), v); err != nil {
		return fmt.Errorf("jsonrepair: %w", err)
	}
	return nil
}

func extract(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
