package colorname

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#0f172a", color.NRGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}},
		{"#FFFFFF", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{"#00ff0080", color.NRGBA{R: 0x00, G: 0xff, B: 0x00, A: 0x80}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseKeyword(t *testing.T) {
	got, err := Parse(" Navy ")
	if err != nil {
		t.Fatalf("Parse keyword: %v", err)
	}
	want := color.NRGBA{R: 0x00, G: 0x00, B: 0x80, A: 0xff}
	if got != want {
		t.Fatalf("Parse(navy) = %+v, want %+v", got, want)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "#fff", "#12345g", "#1234567", "notacolor"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) succeeded, expected error", in)
		}
	}
}
