package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathWithin(t *testing.T) {
	tests := []struct {
		name      string
		root      string
		candidate string
		want      string
		wantErr   bool
	}{
		{"inside", "/photos", "/photos/2024/a.jpg", "/photos/2024/a.jpg", false},
		{"root itself", "/photos", "/photos", "/photos", false},
		{"dot segments resolved", "/photos", "/photos/2024/../2023/b.jpg", "/photos/2023/b.jpg", false},
		{"escape via dot segments", "/photos", "/photos/../etc/passwd", "", true},
		{"sibling with shared prefix", "/photos", "/photos-archive/a.jpg", "", true},
		{"outside", "/photos", "/etc/passwd", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PathWithin(tt.root, tt.candidate)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
