package csn

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/csn/pkg/kicad/schematic"
	"github.com/OpenTraceLab/csn/pkg/netlist"
)

const sampleDoc = `# CSN v1
title: RC Filter

components[2]{ref,type,value,fp,x,y,w,h,a}:
  C1,C,100n,"",100.00,110.00,0.00,7.62,0
  R1,R,10k,0603,100.00,100.00,0.00,7.62,90

pins{U1}[2]:
  1,TXD
  4,RXD

nets[2]{name,pins}:
  OUT,C1.2
  N1,"C1.1,R1.2"

wires[1]{net,pts}:
  N1,"100.00 103.81,100.00 106.19"
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(sampleDoc)
	require.NoError(t, err)

	assert.Equal(t, "RC Filter", doc.Title)

	require.Len(t, doc.Components, 2)
	assert.Equal(t, Component{
		Ref: "C1", Type: "C", Value: "100n",
		X: 100, Y: 110, H: 7.62,
	}, doc.Components[0])
	assert.Equal(t, "0603", doc.Components[1].Footprint)
	assert.Equal(t, 90.0, doc.Components[1].A)

	require.Contains(t, doc.Pins, "U1")
	assert.Equal(t, []PinDef{{"1", "TXD"}, {"4", "RXD"}}, doc.Pins["U1"])

	require.Len(t, doc.Nets, 2)
	assert.Equal(t, Net{Name: "OUT", Pins: []NetPin{{"C1", "2"}}}, doc.Nets[0])
	assert.Equal(t, Net{Name: "N1", Pins: []NetPin{{"C1", "1"}, {"R1", "2"}}}, doc.Nets[1])

	require.Len(t, doc.Wires, 1)
	assert.Equal(t, "N1", doc.Wires[0].Net)
	assert.Equal(t, []schematic.Point{{X: 100, Y: 103.81}, {X: 100, Y: 106.19}}, doc.Wires[0].Points)
}

func TestParseDocumentQuotedFields(t *testing.T) {
	doc, err := ParseDocument(`components[1]{ref,type,value,fp,x,y,w,h,a}:
  U1,NE556,"dual, timer","say \"hi\"",0,0,0,0,0
`)
	require.NoError(t, err)
	require.Len(t, doc.Components, 1)
	assert.Equal(t, "dual, timer", doc.Components[0].Value)
	assert.Equal(t, `say "hi"`, doc.Components[0].Footprint)
}

func TestParseDocumentBadNumber(t *testing.T) {
	_, err := ParseDocument(`components[1]{ref,type,value,fp,x,y,w,h,a}:
  R1,R,10k,,12.7,oops,0,0,0
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}

func TestParseDocumentBadWireCoordinate(t *testing.T) {
	_, err := ParseDocument(`wires[1]{net,pts}:
  N1,"1.0 x"
`)
	require.Error(t, err)
}

func TestParseDocumentTruncatedSection(t *testing.T) {
	// Section header claims more rows than exist; the next header stops
	// consumption instead of swallowing it.
	doc, err := ParseDocument(`components[5]{ref,type,value,fp,x,y,w,h,a}:
  R1,R,10k,,0,0,0,0,0
nets[1]{name,pins}:
  OUT,R1.1
`)
	require.NoError(t, err)
	assert.Len(t, doc.Components, 1)
	require.Len(t, doc.Nets, 1)
	assert.Equal(t, "OUT", doc.Nets[0].Name)
}

func TestReaderRoundTripsEncoder(t *testing.T) {
	sch, err := schematic.Parse(strings.NewReader(rcSchematic))
	require.NoError(t, err)
	nl := netlist.Analyze(sch)

	doc, err := ParseDocument(Encode(sch, nl))
	require.NoError(t, err)

	require.Len(t, doc.Components, 2)
	assert.Equal(t, "C1", doc.Components[0].Ref)
	assert.Equal(t, "R1", doc.Components[1].Ref)

	require.Len(t, doc.Nets, 2)
	assert.Equal(t, "OUT", doc.Nets[0].Name)
	assert.Equal(t, []NetPin{{"C1", "1"}, {"R1", "2"}}, doc.Nets[1].Pins)

	require.Len(t, doc.Wires, 2)
	assert.Equal(t, "OUT", doc.Wires[0].Net)
	require.Len(t, doc.Wires[1].Points, 2)
	assert.InDelta(t, 103.81, doc.Wires[1].Points[0].Y, 1e-9)
}
