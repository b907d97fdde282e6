// Package normalize maps KiCad library identifiers and footprint names to
// the short codes used in canonical output. The mappings live in an
// embedded TOML table so they can be extended without touching code.
package normalize

import (
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed tables.toml
var builtinTables []byte

// icSuffixRe strips package-variant suffixes from IC part numbers,
// e.g. "MCP2551-I-SN" and "ATmega328P-PU" both lose their tails.
var icSuffixRe = regexp.MustCompile(`[-_](I|E|P)[-_]?(SN|SO|P|N|AU|PU)?$`)

// fpFamilyRe recognizes standard package families in long footprint
// names, e.g. "SOIC-8_3.9x4.9mm_P1.27mm".
var fpFamilyRe = regexp.MustCompile(`^(SOIC|TSSOP|SSOP|QFP|LQFP|TQFP|BGA|QFN|DFN|TO-\d+)[-_]?(\d+)?`)

// Table holds normalization mappings for symbol types and footprints.
type Table struct {
	Types      map[string]string `toml:"types"`
	Footprints map[string]string `toml:"footprints"`
	Passives   []string          `toml:"passives"`

	passiveSet map[string]struct{}
}

// Load reads a TOML mapping table.
func Load(r io.Reader) (*Table, error) {
	var t Table
	if _, err := toml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing normalization table: %w", err)
	}
	t.passiveSet = make(map[string]struct{}, len(t.Passives))
	for _, code := range t.Passives {
		t.passiveSet[code] = struct{}{}
	}
	return &t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(strings.NewReader(string(builtinTables)))
		if err != nil {
			panic(fmt.Sprintf("bad embedded normalization table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Type reduces a lib_id to a short type code. Known devices map through
// the table; power symbols keep their bare name; anything else is treated
// as an IC and loses its package-variant suffix.
func (t *Table) Type(libID string) string {
	if code, ok := t.Types[libID]; ok {
		return code
	}
	lib, part, found := strings.Cut(libID, ":")
	if !found {
		return libID
	}
	if lib == "power" {
		return part
	}
	return icSuffixRe.ReplaceAllString(part, "")
}

// Footprint reduces a footprint name to shorthand. Known SMD footprints
// map through the table; otherwise the library prefix is dropped and
// standard package families collapse to FAMILY-PINS.
func (t *Table) Footprint(fp string) string {
	if fp == "" {
		return ""
	}
	if short, ok := t.Footprints[fp]; ok {
		return short
	}
	if i := strings.LastIndex(fp, ":"); i >= 0 {
		fp = fp[i+1:]
	}
	if m := fpFamilyRe.FindStringSubmatch(fp); m != nil {
		if m[2] != "" {
			return m[1] + "-" + m[2]
		}
		return m[1]
	}
	return fp
}

// IsPassive reports whether a type code names a passive device.
func (t *Table) IsPassive(code string) bool {
	_, ok := t.passiveSet[code]
	return ok
}
