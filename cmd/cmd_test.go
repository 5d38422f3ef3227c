package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiesman99/mosaic/pkg/tile"
)

func TestParseCorners(t *testing.T) {
	tests := []struct {
		name           string
		point1, point2 string
		bbox           string
		want1, want2   tile.GeoPoint
		wantErr        bool
	}{
		{
			name:   "points",
			point1: "-25.3,-48.1",
			point2: " -25.7 , -48.5 ",
			want1:  tile.GeoPoint{Lat: -25.3, Lon: -48.1},
			want2:  tile.GeoPoint{Lat: -25.7, Lon: -48.5},
		},
		{
			name:  "bbox",
			bbox:  "45.5,6.25,46.5,7.75",
			want1: tile.GeoPoint{Lat: 45.5, Lon: 6.25},
			want2: tile.GeoPoint{Lat: 46.5, Lon: 7.75},
		},
		{name: "missing point2", point1: "1,2", wantErr: true},
		{name: "bbox and point", point1: "1,2", bbox: "1,2,3,4", wantErr: true},
		{name: "short bbox", bbox: "1,2,3", wantErr: true},
		{name: "not a number", point1: "north,2", point2: "1,2", wantErr: true},
		{name: "nothing", wantErr: true},
		{name: "bbox out of range", bbox: "1e18,0,1e18,1", wantErr: true},
		{name: "latitude out of range", point1: "91,0", point2: "1,2", wantErr: true},
		{name: "longitude out of range", point1: "1,2", point2: "0,-180.5", wantErr: true},
		{name: "not finite", point1: "NaN,0", point2: "1,2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p1, p2, err := parseCorners(tt.point1, tt.point2, tt.bbox)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want1, p1)
			assert.Equal(t, tt.want2, p2)
		})
	}
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAddressCommands(t *testing.T) {
	out, err := runRoot(t, "address", "encode", "--", "-25.3", "-48.1")
	require.NoError(t, err)
	assert.Equal(t, "S026W049", strings.TrimSpace(out))

	out, err = runRoot(t, "address", "region", "--", "-25.3", "-48.1")
	require.NoError(t, err)
	assert.Equal(t, "S030W050", strings.TrimSpace(out))

	out, err = runRoot(t, "address", "decode", "N045E006")
	require.NoError(t, err)
	assert.Equal(t, tile.GeoRect{Lat1: 45, Lon1: 6, Lat2: 46, Lon2: 7}.String(), strings.TrimSpace(out))

	_, err = runRoot(t, "address", "decode", "X045E006")
	assert.Error(t, err)
}
