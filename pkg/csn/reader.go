package csn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/csn/pkg/kicad/schematic"
)

// Document is the parsed form of canonical text.
type Document struct {
	Title      string
	Components []Component
	Pins       map[string][]PinDef
	Nets       []Net
	Wires      []Wire
}

// Component is one row of the components section.
type Component struct {
	Ref       string
	Type      string
	Value     string
	Footprint string
	X, Y      float64
	W, H      float64
	A         float64
}

// PinDef names one pin of a component.
type PinDef struct {
	Number string
	Name   string
}

// Net is one row of the nets section.
type Net struct {
	Name string
	Pins []NetPin
}

// NetPin addresses a component pin as ref.number.
type NetPin struct {
	Ref    string
	Number string
}

// Wire is one row of the wires section.
type Wire struct {
	Net    string
	Points []schematic.Point
}

var (
	componentsHeaderRe = regexp.MustCompile(`^components\[(\d+)\]\{[^}]+\}:$`)
	pinsHeaderRe       = regexp.MustCompile(`^pins\{([^}]+)\}\[(\d+)\]:$`)
	netsHeaderRe       = regexp.MustCompile(`^nets\[(\d+)\]\{[^}]+\}:$`)
	wiresHeaderRe      = regexp.MustCompile(`^wires\[(\d+)\]\{[^}]+\}:$`)
)

// ParseDocument reads canonical text back into a Document. Unknown lines
// are skipped; malformed numbers in recognized rows are errors.
func ParseDocument(text string) (*Document, error) {
	doc := &Document{Pins: make(map[string][]PinDef)}
	lines := strings.Split(strings.TrimSpace(text), "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			i++

		case strings.HasPrefix(line, "title:"):
			doc.Title = strings.TrimSpace(line[len("title:"):])
			i++

		case componentsHeaderRe.MatchString(line):
			count, _ := strconv.Atoi(componentsHeaderRe.FindStringSubmatch(line)[1])
			rows, next := takeRows(lines, i+1, count)
			for _, row := range rows {
				comp, err := parseComponentRow(row)
				if err != nil {
					return nil, err
				}
				doc.Components = append(doc.Components, comp)
			}
			i = next

		case pinsHeaderRe.MatchString(line):
			m := pinsHeaderRe.FindStringSubmatch(line)
			ref := m[1]
			count, _ := strconv.Atoi(m[2])
			rows, next := takeRows(lines, i+1, count)
			for _, row := range rows {
				fields := splitRow(row)
				if len(fields) >= 2 {
					doc.Pins[ref] = append(doc.Pins[ref], PinDef{Number: fields[0], Name: fields[1]})
				}
			}
			i = next

		case netsHeaderRe.MatchString(line):
			count, _ := strconv.Atoi(netsHeaderRe.FindStringSubmatch(line)[1])
			rows, next := takeRows(lines, i+1, count)
			for _, row := range rows {
				fields := splitRow(row)
				net := Net{}
				if len(fields) > 0 {
					net.Name = fields[0]
				}
				if len(fields) > 1 {
					net.Pins = parseNetPins(fields[1])
				}
				doc.Nets = append(doc.Nets, net)
			}
			i = next

		case wiresHeaderRe.MatchString(line):
			count, _ := strconv.Atoi(wiresHeaderRe.FindStringSubmatch(line)[1])
			rows, next := takeRows(lines, i+1, count)
			for _, row := range rows {
				fields := splitRow(row)
				wire := Wire{}
				if len(fields) > 0 {
					wire.Net = fields[0]
				}
				if len(fields) > 1 {
					pts, err := parsePoints(fields[1])
					if err != nil {
						return nil, err
					}
					wire.Points = pts
				}
				doc.Wires = append(doc.Wires, wire)
			}
			i = next

		default:
			i++
		}
	}

	return doc, nil
}

// takeRows collects up to count data rows starting at index start,
// stopping early at a section header. Returns the rows and the index of
// the first unconsumed line.
func takeRows(lines []string, start, count int) ([]string, int) {
	var rows []string
	i := start
	for len(rows) < count && i < len(lines) {
		row := strings.TrimSpace(lines[i])
		if row == "" || strings.HasPrefix(row, "#") {
			i++
			continue
		}
		if isSectionHeader(row) {
			break
		}
		rows = append(rows, row)
		i++
	}
	return rows, i
}

func isSectionHeader(line string) bool {
	return componentsHeaderRe.MatchString(line) ||
		pinsHeaderRe.MatchString(line) ||
		netsHeaderRe.MatchString(line) ||
		wiresHeaderRe.MatchString(line)
}

func parseComponentRow(row string) (Component, error) {
	fields := splitRow(row)
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	comp := Component{
		Ref:       get(0),
		Type:      get(1),
		Value:     get(2),
		Footprint: get(3),
	}
	for i, dst := range []*float64{&comp.X, &comp.Y, &comp.W, &comp.H, &comp.A} {
		s := get(4 + i)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Component{}, fmt.Errorf("component %s: bad number %q: %w", comp.Ref, s, err)
		}
		*dst = v
	}
	return comp, nil
}

// splitRow splits a comma-separated row, honoring quoted fields with
// backslash escapes.
func splitRow(row string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '\\' && inQuotes && i+1 < len(row):
			i++
			switch row[i] {
			case '"', '\\':
				cur.WriteByte(row[i])
			default:
				cur.WriteByte(c)
				cur.WriteByte(row[i])
			}
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}

func parseNetPins(s string) []NetPin {
	var pins []NetPin
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		dot := strings.LastIndex(part, ".")
		if dot <= 0 {
			continue
		}
		pins = append(pins, NetPin{Ref: part[:dot], Number: part[dot+1:]})
	}
	return pins
}

func parsePoints(s string) ([]schematic.Point, error) {
	var pts []schematic.Point
	for _, part := range strings.Split(s, ",") {
		coords := strings.Fields(part)
		if len(coords) < 2 {
			continue
		}
		x, err := strconv.ParseFloat(coords[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad wire coordinate %q: %w", coords[0], err)
		}
		y, err := strconv.ParseFloat(coords[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad wire coordinate %q: %w", coords[1], err)
		}
		pts = append(pts, schematic.Point{X: x, Y: y})
	}
	return pts, nil
}
