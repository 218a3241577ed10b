package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		expectedKm float64
		toleranceKm float64
	}{
		{
			name: "same point",
			lat1: -6.2000, lng1: 106.8167,
			lat2: -6.2000, lng2: 106.8167,
			expectedKm:  0,
			toleranceKm: 0.001,
		},
		{
			name: "jakarta to bandung",
			lat1: -6.2000, lng1: 106.8167,
			lat2: -6.9147, lng2: 107.6098,
			expectedKm:  118,
			toleranceKm: 5,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lng1: 0,
			lat2: 1, lng2: 0,
			expectedKm:  111.19,
			toleranceKm: 0.5,
		},
		{
			name: "about six km apart",
			lat1: -6.2000, lng1: 106.8167,
			lat2: -6.2000, lng2: 106.8710,
			expectedKm:  6.0,
			toleranceKm: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.expectedKm, got, tt.toleranceKm)
		})
	}
}
