package trajectory

import (
	"math"
	"testing"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{10, "10.0"},
		{0.001, "0.001"},
		{1e-06 * 3 * 1000, "0.003"},
		{0.0001, "0.0001"},
		{1e-05, "1e-05"},
		{1.5e-07, "1.5e-07"},
		{123456789012345.6, "123456789012345.6"},
		{1e16, "1e+16"},
		{-2.25, "-2.25"},
		{math.Copysign(0, -1), "-0.0"},
		{12.345678901234567, "12.345678901234567"},
		{math.NaN(), "nan"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
