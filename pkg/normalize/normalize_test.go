package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeMapped(t *testing.T) {
	tab := Default()
	cases := map[string]string{
		"Device:R":              "R",
		"Device:R_Small":        "R",
		"Device:C_Polarized":    "CP",
		"Device:Q_NPN_BCE":      "QNPN",
		"Device:Q_PMOS_GDS":     "PMOS",
		"Device:Crystal_Small":  "XTAL",
		"Connector:Conn_01x04":  "CONN4",
		"Device:Ferrite_Bead":   "FB",
	}
	for in, want := range cases {
		assert.Equal(t, want, tab.Type(in), "lib_id %s", in)
	}
}

func TestTypePowerAndIC(t *testing.T) {
	tab := Default()

	assert.Equal(t, "GND", tab.Type("power:GND"))
	assert.Equal(t, "+3V3", tab.Type("power:+3V3"))

	// IC part numbers lose the package-variant suffix.
	assert.Equal(t, "MCP2551", tab.Type("Interface_CAN_LIN:MCP2551-I-SN"))
	assert.Equal(t, "MAX232", tab.Type("Interface_UART:MAX232_E_SO"))
	assert.Equal(t, "TL072", tab.Type("Amplifier_Operational:TL072-P"))

	// Suffix without a separator stays put.
	assert.Equal(t, "NE555P", tab.Type("Timer:NE555P"))

	// No colon: returned unchanged.
	assert.Equal(t, "MYSTERY", tab.Type("MYSTERY"))
}

func TestFootprint(t *testing.T) {
	tab := Default()
	cases := map[string]string{
		"":                                  "",
		"Resistor_SMD:R_0603_1608Metric":    "0603",
		"Capacitor_SMD:C_0805_2012Metric":   "0805",
		"Package_SO:SOIC-8_3.9x4.9mm_P1.27mm": "SOIC-8",
		"Package_QFP:LQFP-48_7x7mm_P0.5mm":  "LQFP-48",
		"Package_TO_SOT_THT:TO-220-3_Vertical": "TO-220-3",
		"Custom:My_Odd_Part":                "My_Odd_Part",
	}
	for in, want := range cases {
		assert.Equal(t, want, tab.Footprint(in), "footprint %s", in)
	}
}

func TestIsPassive(t *testing.T) {
	tab := Default()
	assert.True(t, tab.IsPassive("R"))
	assert.True(t, tab.IsPassive("LED"))
	assert.True(t, tab.IsPassive("CONN2"))
	assert.False(t, tab.IsPassive("MCP2551"))
	assert.False(t, tab.IsPassive("QNPN"))
}

func TestLoadCustomTable(t *testing.T) {
	tab, err := Load(strings.NewReader(`
passives = ["FB2"]
[types]
"Foo:Bar" = "FB2"
[footprints]
"X:Y" = "Z"
`))
	require.NoError(t, err)
	assert.Equal(t, "FB2", tab.Type("Foo:Bar"))
	assert.Equal(t, "Z", tab.Footprint("X:Y"))
	assert.True(t, tab.IsPassive("FB2"))
}

func TestLoadBadTOML(t *testing.T) {
	_, err := Load(strings.NewReader(`[types`))
	require.Error(t, err)
}
