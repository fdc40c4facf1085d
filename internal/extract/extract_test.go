// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

func TestForKind(t *testing.T) {
	tb := toolbox(nil, nil)

	ex, err := ForKind(types.KindPDF, tb)
	require.NoError(t, err)
	assert.IsType(t, &PDF{}, ex)

	ex, err = ForKind(types.KindCBR, tb)
	require.NoError(t, err)
	assert.IsType(t, &CBR{}, ex)

	ex, err = ForKind(types.KindEPUB, tb)
	require.NoError(t, err)
	assert.IsType(t, &EPUB{}, ex)

	_, err = ForKind(types.KindUnknown, tb)
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
}

func TestIsPageEntry(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"001.jpg", true},
		{"Chapter 1/002.JPEG", true},
		{"scan.webp", true},
		{"cover.tif", true},
		{"info.txt", false},
		{"ComicInfo.xml", false},
		{".hidden.jpg", false},
		{"__MACOSX/._001.jpg", false},
		{"vol/__MACOSX/001.jpg", false},
		{"dir\\003.png", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPageEntry(tt.name), tt.name)
	}
}
