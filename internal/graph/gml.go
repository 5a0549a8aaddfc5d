package graph

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// gmlListStart marks single-element lists so readers can tell them apart from
// scalars, following the networkx convention.
const gmlListStart = "_networkx_list_start"

var gmlKeyPattern = regexp.MustCompile(`^[A-Za-z][0-9A-Za-z_]*$`)

// gmlWriter accumulates output and remembers the first write error.
type gmlWriter struct {
	w   *bufio.Writer
	err error
}

func (gw *gmlWriter) line(indent int, format string, args ...any) {
	if gw.err != nil {
		return
	}
	if _, err := gw.w.WriteString(strings.Repeat("  ", indent)); err != nil {
		gw.err = err
		return
	}
	if _, err := fmt.Fprintf(gw.w, format+"\n", args...); err != nil {
		gw.err = err
	}
}

// WriteGML writes g in GML.
//
// Nodes get consecutive integer ids and their identifier as label. Attributes
// named id or label on nodes, and source or target on edges, are not written
// since GML reserves them. Nested mappings become nested blocks and lists become
// repeated keys. Attribute names must match [A-Za-z][0-9A-Za-z_]*.
func WriteGML(w io.Writer, g *Graph) error {
	gw := &gmlWriter{w: bufio.NewWriter(w)}

	gw.line(0, "graph [")
	gw.line(1, "directed 1")

	ids := make(map[string]int, g.NodeCount())
	for i, n := range g.Nodes() {
		ids[n.ID] = i
		gw.line(1, "node [")
		gw.line(2, "id %d", i)
		gw.line(2, "label %s", gmlQuote(n.ID))
		if err := writeGMLAttrs(gw, 2, n.Attrs, "id", "label"); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
		gw.line(1, "]")
	}

	for _, e := range g.Edges() {
		gw.line(1, "edge [")
		gw.line(2, "source %d", ids[e.Source])
		gw.line(2, "target %d", ids[e.Target])
		if err := writeGMLAttrs(gw, 2, e.Attrs, "source", "target"); err != nil {
			return fmt.Errorf("edge %s -> %s: %w", e.Source, e.Target, err)
		}
		gw.line(1, "]")
	}

	gw.line(0, "]")

	if gw.err != nil {
		return fmt.Errorf("writing GML: %w", gw.err)
	}
	if err := gw.w.Flush(); err != nil {
		return fmt.Errorf("writing GML: %w", err)
	}
	return nil
}

func writeGMLAttrs(gw *gmlWriter, indent int, attrs Attrs, reserved ...string) error {
	for _, k := range attrs.SortedKeys() {
		if isReserved(k, reserved) {
			continue
		}
		if err := writeGMLValue(gw, indent, k, attrs[k], false); err != nil {
			return err
		}
	}
	return nil
}

func writeGMLValue(gw *gmlWriter, indent int, key string, v any, inList bool) error {
	if !gmlKeyPattern.MatchString(key) {
		return fmt.Errorf("%q is not a valid GML key", key)
	}

	switch classify(v) {
	case kindNil:
		// Nothing to write.
	case kindBool, kindInt:
		n := toInt64(v)
		if n < -1<<31 || n >= 1<<31 {
			// GML integers are 32-bit.
			gw.line(indent, "%s %s", key, gmlQuote(strconv.FormatInt(n, 10)))
		} else {
			gw.line(indent, "%s %d", key, n)
		}
	case kindFloat:
		gw.line(indent, "%s %s", key, gmlFloat(toFloat64(v)))
	case kindString:
		gw.line(indent, "%s %s", key, gmlQuote(toString(v)))
	case kindMap:
		m := toMap(v)
		gw.line(indent, "%s [", key)
		if err := writeGMLAttrs(gw, indent+1, Attrs(m)); err != nil {
			return err
		}
		gw.line(indent, "]")
	case kindList:
		list := toList(v)
		if len(list) == 1 && !inList {
			gw.line(indent, "%s %s", key, gmlQuote(gmlListStart))
		}
		for _, item := range list {
			if err := writeGMLValue(gw, indent, key, item, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// gmlFloat formats a GML real. Reals need a decimal point before any exponent
// and infinities need an explicit sign.
func gmlFloat(f float64) string {
	s := strings.ToUpper(formatFloat(f))
	if s == "INF" {
		return "+INF"
	}
	if mant, exp, found := strings.Cut(s, "E"); found && !strings.Contains(mant, ".") {
		return mant + ".E" + exp
	}
	return s
}

// gmlQuote quotes a GML string, escaping quotes, ampersands and anything outside
// printable ASCII as XML character references.
func gmlQuote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if r < ' ' || r > '~' || r == '&' || r == '"' {
			sb.WriteString("&#")
			sb.WriteString(strconv.Itoa(int(r)))
			sb.WriteByte(';')
			continue
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

func isReserved(key string, reserved []string) bool {
	for _, r := range reserved {
		if key == r {
			return true
		}
	}
	return false
}
