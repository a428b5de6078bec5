package language

import (
	"reflect"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		{"es", "es"},
		// 3-letter codes convert
		{"eng", "en"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"dut", "nl"},
		// Word forms
		{"english", "en"},
		{"French", "fr"},
		{"GERMAN", "de"},
		// Unknown 2-letter passes through
		{"xy", "xy"},
		// Unknown 3-letter returns empty
		{"xyz", ""},
		// Empty
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"jpn", "Japanese"},
		{"", "Unknown"},
		{"qq", "QQ"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSubtitleSpec(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"", "en"},
		{"en-US", "en-us,en"},
		{"pt-BR", "pt-br,pt"},
		{"eng", "eng,en"},
		{"de", "de"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SubtitleSpec(tt.input); got != tt.expected {
				t.Errorf("SubtitleSpec(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPreference(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{"en", "en-US", "en-GB"}},
		{"en", []string{"en", "en-US", "en-GB"}},
		{"de", []string{"de"}},
		{"pt-br", []string{"pt-br", "pt"}},
		{"fra", []string{"fra", "fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Preference(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Preference(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
