package features

import (
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"1H", time.Hour, false},
		{"3H", 3 * time.Hour, false},
		{"24H", 24 * time.Hour, false},
		{"30T", 30 * time.Minute, false},
		{"45S", 45 * time.Second, false},
		{"7D", 7 * 24 * time.Hour, false},
		{"1h", time.Hour, false},
		{"", 0, true},
		{"H", 0, true},
		{"1X", 0, true},
		{"0H", 0, true},
		{"-1H", 0, true},
		{"1.5H", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWindow(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindow(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseWindow(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
