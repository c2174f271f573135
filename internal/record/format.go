package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned when an output format name is not recognised.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects how a record is rendered.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHead Format = "head"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatHead}
}

// ParseFormat maps a name to a Format. An empty name selects JSON.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "head", "html":
		return FormatHead, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// ContentType returns the MIME type used when serving f over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatHead:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}
