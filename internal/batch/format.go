package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the summary output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// WriteSummary renders the batch summary to w in the chosen format.
func WriteSummary(w io.Writer, s *Summary, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(s)
	default:
		return writeText(w, s)
	}
}

func writeText(w io.Writer, s *Summary) error {
	for _, o := range s.Outcomes {
		status := "ok"
		detail := ""
		if o.Err != "" {
			status = "failed"
			detail = ": " + o.Err
		} else if o.Result != nil {
			detail = fmt.Sprintf(": %d entries, confidence %.2f (%s)",
				len(o.Result.Entries), o.Result.Confidence.Overall, o.Result.Confidence.Band)
		}
		if _, err := fmt.Fprintf(w, "%-6s %s%s (%.1fs)\n",
			status, o.Path, detail, o.Duration.Seconds()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d processed, %d succeeded, %d failed, %d entries in %.1fs\n",
		s.Processed, s.Succeeded, s.Failed, s.TotalEntries, s.Elapsed.Seconds())
	return err
}
