package vercmp

import (
	"fmt"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "2.0.0", -1},
		{"1.0.0", "1.0.0.r101", -1},
		{"1.0.0", "1.0.0", 0},
		{"2019.10.06", "2020.12.07", -1},
		{"1.3_20200327", "1.3_20210319", -1},
		{"r2991.1771b556", "0.161.r3039.544c61f", -1},
		{"6.8", "6.8.3", -1},
		{"6.8", "6.8.", -1},
		{"2.5.9.27149.9f6840e90c", "3.0.7.33374", -1},
		{".", "", 1},
		{"0", "", 1},
		{"0", "00", 0},
		{".", "..0", -1},
		{".0", "..0", -1},
		{"1r", "1", -1},
		{"r1", "r", 1},
		{"1.1.0", "1.1.0a", 1},
		{"1.1.0.", "1.1.0a", 1},
		{"a", "1", -1},
		{".", "1", -1},
		{".", "a", 1},
		{"a1", "1", -1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q_vs_%q", tt.a, tt.b), func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			// antisymmetry
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestCompareEpochAndRelease(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		// explicit epoch beats any version
		{"1~1.0", "999.0", 1},
		{"2~1.0", "1~999.0", 1},
		{"0~1.0", "1.0", 0},
		// release only compared when both sides carry one
		{"1.0-1", "1.0-2", -1},
		{"1.0-1", "1.0", 0},
		{"1.0-2", "1.0-10", -1},
		// only the last dash splits the release
		{"1.0-2-2", "1.0-2-10", -1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q_vs_%q", tt.a, tt.b), func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareHugeNumbers(t *testing.T) {
	// digit runs longer than an int64 must still compare numerically
	a := "184467440737095516150"
	b := "184467440737095516149"
	if got := Compare(a, b); got != 1 {
		t.Errorf("Compare(%q, %q) = %d, want 1", a, b, got)
	}
}

func TestIsNewerThan(t *testing.T) {
	if !IsNewerThan("2.0.0-1", "1.0.0-1") {
		t.Error("2.0.0-1 should be newer than 1.0.0-1")
	}
	if IsNewerThan("1.0.0-1", "1.0.0-1") {
		t.Error("a version is not newer than itself")
	}
}
