package render

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"SVG", FormatSVG, false},
		{" pdf ", FormatPDF, false},
		{"jpg", FormatJPG, false},
		{"jpeg", FormatJPG, false},
		{"dot", FormatDOT, false},
		{"gv", FormatDOT, false},
		{"json", FormatJSON, false},
		{"gif", "", true},
		{"tower", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatProperties(t *testing.T) {
	tests := []struct {
		format      Format
		needsEngine bool
		contentType string
	}{
		{FormatPNG, true, "image/png"},
		{FormatSVG, true, "image/svg+xml"},
		{FormatPDF, true, "application/pdf"},
		{FormatJPG, true, "image/jpeg"},
		{FormatDOT, false, "text/vnd.graphviz; charset=utf-8"},
		{FormatJSON, false, "application/json"},
	}

	for _, tt := range tests {
		if got := tt.format.NeedsEngine(); got != tt.needsEngine {
			t.Errorf("%s.NeedsEngine() = %v, want %v", tt.format, got, tt.needsEngine)
		}
		if got := tt.format.ContentType(); got != tt.contentType {
			t.Errorf("%s.ContentType() = %q, want %q", tt.format, got, tt.contentType)
		}
		if got := tt.format.Ext(); got != string(tt.format) {
			t.Errorf("%s.Ext() = %q", tt.format, got)
		}
	}
}
