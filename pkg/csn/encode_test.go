package csn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/csn/pkg/kicad/schematic"
	"github.com/OpenTraceLab/csn/pkg/netlist"
)

const rcSchematic = `(kicad_sch (version 20231120)
	(lib_symbols
		(symbol "Device:R"
			(symbol "R_1_1"
				(pin passive line (at 0 3.81 270) (length 1.27)
					(name "~") (number "1"))
				(pin passive line (at 0 -3.81 90) (length 1.27)
					(name "~") (number "2"))))
		(symbol "Device:C"
			(symbol "C_1_1"
				(pin passive line (at 0 3.81 270) (length 2.794)
					(name "~") (number "1"))
				(pin passive line (at 0 -3.81 90) (length 2.794)
					(name "~") (number "2")))))
	(symbol (lib_id "Device:R") (at 100 100 0)
		(property "Reference" "R1" (at 0 0 0))
		(property "Value" "10k" (at 0 0 0)))
	(symbol (lib_id "Device:C") (at 100 110 0)
		(property "Reference" "C1" (at 0 0 0))
		(property "Value" "100n" (at 0 0 0)))
	(wire (pts (xy 100 103.81) (xy 100 106.19)))
	(wire (pts (xy 100 113.81) (xy 110 113.81)))
	(label "OUT" (at 110 113.81 0)))`

func encodeFixture(t *testing.T, text string) string {
	t.Helper()
	sch, err := schematic.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return Encode(sch, netlist.Analyze(sch))
}

func TestEncodeRCFilter(t *testing.T) {
	got := encodeFixture(t, rcSchematic)

	want := strings.Join([]string{
		"# CSN v1",
		"",
		"components[2]{ref,type,value,fp,x,y,w,h,a}:",
		`  C1,C,100n,"",100.00,110.00,0.00,7.62,0`,
		`  R1,R,10k,"",100.00,100.00,0.00,7.62,0`,
		"",
		"nets[2]{name,pins}:",
		"  OUT,C1.2",
		`  N1,"C1.1,R1.2"`,
		"",
		"wires[2]{net,pts}:",
		`  OUT,"100.00 113.81,110.00 113.81"`,
		`  N1,"100.00 103.81,100.00 106.19"`,
		"",
	}, "\n") + "\n"

	assert.Equal(t, want, got)
}

func TestEncodeTitleLine(t *testing.T) {
	got := encodeFixture(t, `(kicad_sch
		(title_block (title "CAN Node")))`)
	assert.True(t, strings.HasPrefix(got, "# CSN v1\ntitle: CAN Node\n"), got)
}

func TestEncodePinsSection(t *testing.T) {
	got := encodeFixture(t, `(kicad_sch
		(lib_symbols
			(symbol "Interface_CAN_LIN:MCP2551-I-SN"
				(symbol "MCP2551-I-SN_1_1"
					(pin input line (at -7.62 2.54 0) (length 2.54)
						(name "TXD") (number "1"))
					(pin output line (at -7.62 -2.54 0) (length 2.54)
						(name "RXD") (number "4")))))
		(symbol (lib_id "Interface_CAN_LIN:MCP2551-I-SN") (at 50 50 0)
			(property "Reference" "U1" (at 0 0 0))
			(property "Value" "MCP2551" (at 0 0 0))))`)

	assert.Contains(t, got, "pins{U1}[2]:\n  1,TXD\n  4,RXD\n")
	// Type code loses the package suffix in the component row.
	assert.Contains(t, got, "  U1,MCP2551,MCP2551,")
}

func TestEncodeNoPinsForPassives(t *testing.T) {
	got := encodeFixture(t, rcSchematic)
	assert.NotContains(t, got, "pins{")
}

func TestEncodeReferenceOrder(t *testing.T) {
	refs := []schematic.Component{
		{Reference: "R10"}, {Reference: "R2"}, {Reference: "C1"}, {Reference: "R1"},
	}
	sortByReference(refs)
	var got []string
	for _, c := range refs {
		got = append(got, c.Reference)
	}
	assert.Equal(t, []string{"C1", "R1", "R2", "R10"}, got)
}

func TestEncodeDeterministic(t *testing.T) {
	first := encodeFixture(t, rcSchematic)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, encodeFixture(t, rcSchematic))
	}
}

func TestQuoteValue(t *testing.T) {
	cases := map[string]string{
		"":          `""`,
		"10k":       "10k",
		"100":       "100",
		"-3.3":      "-3.3",
		"a,b":       `"a,b"`,
		`say "hi"`:  `"say \"hi\""`,
		`back\slash`: `"back\\slash"`,
		"true":      `"true"`,
		"False":     `"False"`,
		"null":      `"null"`,
		" padded":   `" padded"`,
		"SOIC-8":    "SOIC-8",
	}
	for in, want := range cases {
		assert.Equal(t, want, quoteValue(in), "value %q", in)
	}
}
