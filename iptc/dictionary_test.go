package iptc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/camden-git/photometabackend/iptc"
)

func TestDefaultDictionary(t *testing.T) {
	dict := iptc.DefaultDictionary()
	entries := dict.Entries()
	require.Len(t, entries, 18)

	tests := []struct {
		label string
		key   string
		multi bool
	}{
		{"ObjectName", "Iptc.Application2.ObjectName", false},
		{"Keywords", "Iptc.Application2.Keywords", true},
		{"SupplementalCategories", "Iptc.Application2.SupplementalCategories", true},
		{"Caption", "Iptc.Application2.Caption", false},
		{"By-line", "Iptc.Application2.By-line", false},
		{"Province-State", "Iptc.Application2.Province-State", false},
		{"Country-PrimaryLocationName", "Iptc.Application2.Country-PrimaryLocationName", false},
		{"OriginalTransmissionReference", "Iptc.Application2.OriginalTransmissionReference", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			key, ok := dict.RawKey(tt.label)
			require.True(t, ok)
			require.Equal(t, tt.key, key)
			require.Equal(t, tt.multi, dict.IsMulti(tt.label))
		})
	}

	_, ok := dict.RawKey("NotAField")
	require.False(t, ok)
	require.False(t, dict.IsMulti("NotAField"))

	// every entry carries a description for the definitions endpoint
	for _, e := range entries {
		require.NotEmpty(t, e.Description, e.Label)
	}
}

func TestNewDictionaryLaterDuplicateWins(t *testing.T) {
	dict := iptc.NewDictionary([]iptc.Entry{
		{Label: "Caption", RawKey: "Iptc.Application2.Caption"},
		{Label: "Caption", RawKey: "Iptc.Application2.Headline"},
	})

	key, ok := dict.RawKey("Caption")
	require.True(t, ok)
	require.Equal(t, "Iptc.Application2.Headline", key)
}

func TestZeroDictionaryResolvesNothing(t *testing.T) {
	var dict iptc.Dictionary
	_, ok := dict.RawKey("Keywords")
	require.False(t, ok)
	require.Empty(t, dict.Entries())
}
