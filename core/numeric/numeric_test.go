package numeric

import (
	"testing"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  float64
		wantOK bool
	}{
		{name: "plain integer", in: "840", want: 840, wantOK: true},
		{name: "dot decimal", in: "12.5", want: 12.5, wantOK: true},
		{name: "comma decimal", in: "12,5", want: 12.5, wantOK: true},
		{name: "space grouping comma decimal", in: "1 234,56", want: 1234.56, wantOK: true},
		{name: "nbsp grouping", in: "10 000", want: 10000, wantOK: true},
		{name: "dot grouping comma decimal", in: "1.234,56", want: 1234.56, wantOK: true},
		{name: "comma grouping dot decimal", in: "1,234.56", want: 1234.56, wantOK: true},
		{name: "multiple dot grouping", in: "1.234.567", want: 1234567, wantOK: true},
		{name: "multiple comma grouping", in: "1,234,567", want: 1234567, wantOK: true},
		{name: "negative comma decimal", in: "-640,25", want: -640.25, wantOK: true},
		{name: "currency suffix", in: "1 250 Kč", want: 1250, wantOK: true},
		{name: "currency prefix", in: "€ 99,90", want: 99.9, wantOK: true},
		{name: "unit suffix", in: "32,5 m3", want: 32.5, wantOK: true},
		{name: "kwh suffix", in: "412 kWh", want: 412, wantOK: true},
		{name: "empty", in: "", want: 0, wantOK: false},
		{name: "whitespace only", in: "   ", want: 0, wantOK: false},
		{name: "lone dash", in: "-", want: 0, wantOK: false},
		{name: "em dash", in: "—", want: 0, wantOK: false},
		{name: "na token", in: "N/A", want: 0, wantOK: false},
		{name: "excel na", in: "#N/A", want: 0, wantOK: false},
		{name: "excel div zero", in: "#DIV/0!", want: 0, wantOK: false},
		{name: "not available phrase", in: "not available", want: 0, wantOK: false},
		{name: "garbage text", in: "Total", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFloat(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseFloat(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFloatDefault(t *testing.T) {
	if got := ParseFloatDefault("garbage", 7); got != 7 {
		t.Errorf("expected default 7, got %v", got)
	}
	if got := ParseFloatDefault("3,5", 7); got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Novák Jan  ", "Novák Jan"},
		{"#N/A", ""},
		{"N/A", ""},
		{"-", ""},
		{"—", ""},
		{"not available", ""},
		{"", ""},
		{"123/45", "123/45"},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "zero renders empty", in: 0, want: ""},
		{name: "integer", in: 840, want: "840"},
		{name: "grouped integer", in: 10000, want: "10 000"},
		{name: "large grouped", in: 1234567, want: "1 234 567"},
		{name: "comma decimal", in: 12.5, want: "12,5"},
		{name: "two decimals", in: 1234.56, want: "1 234,56"},
		{name: "negative", in: -640.25, want: "-640,25"},
		{name: "rounds to two places", in: 0.005, want: "0,01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(tt.in); got != tt.want {
				t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	values := []float64{840, 640.25, 10000, 1234.56, -99.9, 0.01}
	for _, v := range values {
		s := FormatAmount(v)
		got, ok := ParseFloat(s)
		if !ok {
			t.Fatalf("ParseFloat(FormatAmount(%v)=%q) failed", v, s)
		}
		if got != v {
			t.Errorf("round trip %v -> %q -> %v", v, s, got)
		}
	}
}
