package graph

import (
	"fmt"
	"strings"
)

// Format selects the graph interchange format. It also decides how records are
// sanitized, since GraphML cannot represent nested attributes.
type Format int

const (
	// FormatGML is the GML attributed graph format. It can hold nested metadata.
	FormatGML Format = iota
	// FormatGraphML is the GraphML XML format. Only scalar attributes survive.
	FormatGraphML
)

// ValidFormats lists the accepted format names.
var ValidFormats = []string{"gml", "graphml"}

// ParseFormat parses a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gml":
		return FormatGML, nil
	case "graphml":
		return FormatGraphML, nil
	}
	return 0, fmt.Errorf("invalid graph format: %s (valid: %v)", s, ValidFormats)
}

func (f Format) String() string {
	switch f {
	case FormatGML:
		return "gml"
	case FormatGraphML:
		return "graphml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}
