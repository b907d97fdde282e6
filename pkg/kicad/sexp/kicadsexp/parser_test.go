package kicadsexp

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAtomsAndLists(t *testing.T) {
	sexps, err := ParseString(`(wire (pts (xy 100 50) (xy 120 50)))`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sexps) != 1 {
		t.Fatalf("expected 1 expression, got %d", len(sexps))
	}

	root, ok := sexps[0].(*List)
	if !ok {
		t.Fatalf("expected list at root, got %T", sexps[0])
	}
	if root.Len() != 2 {
		t.Errorf("expected 2 elements, got %d", root.Len())
	}
	if sym, ok := root.Get(0).(Symbol); !ok || string(sym) != "wire" {
		t.Errorf("expected head symbol 'wire', got %v", root.Get(0))
	}

	pts := root.Get(1).(*List)
	if pts.Len() != 3 {
		t.Errorf("expected pts list of 3, got %d", pts.Len())
	}
}

func TestParseQuotedString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`(title "Example Board")`, "Example Board"},
		{`(title "with \"quotes\"")`, `with "quotes"`},
		{`(title "back\\slash")`, `back\slash`},
		{`(title "tab\there")`, "tab\there"},
		{`(title "line\nbreak")`, "line\nbreak"},
		{`(title "")`, ""},
	}

	for _, tt := range tests {
		sexps, err := ParseString(tt.input)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tt.input, err)
		}
		list := sexps[0].(*List)
		got := string(list.Get(1).(Symbol))
		if got != tt.want {
			t.Errorf("parse %q: got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseMultipleTopLevel(t *testing.T) {
	sexps, err := ParseString(`(a 1) (b 2) atom`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sexps) != 3 {
		t.Fatalf("expected 3 expressions, got %d", len(sexps))
	}
	if !sexps[2].IsLeaf() {
		t.Errorf("expected third expression to be a leaf")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"stray close", `(a b)) `},
		{"missing close", `(a (b c)`},
		{"unterminated string", `(title "oops`},
		{"escape at EOF", `(title "oops\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			var ferr *FormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("expected FormatError, got %T: %v", err, err)
			}
			if ferr.Line < 1 || ferr.Col < 1 {
				t.Errorf("expected position info, got line=%d col=%d", ferr.Line, ferr.Col)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := ParseString("(a b)\n  )")
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if ferr.Line != 2 || ferr.Col != 3 {
		t.Errorf("expected error at 2:3, got %d:%d", ferr.Line, ferr.Col)
	}
}

func TestStringRoundTrip(t *testing.T) {
	sexps, err := ParseString("(pin passive line (at -2.54 0 0))")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got := sexps[0].String()
	if got != "(pin passive line (at -2.54 0 0))" {
		t.Errorf("unexpected re-emission: %s", got)
	}
}

func TestParseStreaming(t *testing.T) {
	// A document larger than any single buffered read
	var b strings.Builder
	b.WriteString("(root")
	for i := 0; i < 50000; i++ {
		b.WriteString(" (xy 1.00 2.00)")
	}
	b.WriteString(")")

	sexps, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	root := sexps[0].(*List)
	if root.Len() != 50001 {
		t.Errorf("expected 50001 elements, got %d", root.Len())
	}
}
