package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectImagingFinding_Deterministic(t *testing.T) {
	// Single-byte payloads whose md5-derived index covers the whole
	// catalog
	tests := []struct {
		name    string
		payload string
		wantIdx int
	}{
		{"index 0", "a", 0},
		{"index 1", "h", 1},
		{"index 2", "e", 2},
		{"index 3", "d", 3},
		{"index 4", "b", 4},
		{"index 5", "i", 5},
		{"index 6", "t", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectImagingFinding([]byte(tt.payload))
			assert.Equal(t, imagingCatalog[tt.wantIdx], got)
		})
	}
}

func TestSelectImagingFinding_SameBytesSameFinding(t *testing.T) {
	payload := []byte("the same scan uploaded twice")

	first := selectImagingFinding(payload)
	second := selectImagingFinding(payload)

	assert.Equal(t, first, second)
}

func TestSelectImagingFinding_ParkinsonsEntry(t *testing.T) {
	// md5("d") mod 7 == 3, the Parkinson's catalog entry
	got := selectImagingFinding([]byte("d"))

	assert.Contains(t, got.Suspected, "帕金森病")
	assert.Equal(t, []string{"黑质", "纹状体"}, got.Regions)
	assert.Equal(t, "高风险", got.Severity)
}

func TestSelectGeneFinding_ByFilenameLength(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantIdx  int
	}{
		{"length 4", "a.cs", 0},
		{"length 1", "x", 1},
		{"length 2", "ab", 2},
		{"length 3", "a.b", 3},
		{"length 8", "data.csv", 0},
		{"unicode counts runes", "基因数据.h5", 3}, // 7 runes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectGeneFinding(tt.filename)
			assert.Equal(t, geneCatalog[tt.wantIdx], got)
		})
	}
}
