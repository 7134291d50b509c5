package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/farmbook/internal/encoding"
)

func readAll(t *testing.T, r io.Reader, err error) string {
	t.Helper()
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "utf-8 passes through",
			input: []byte("material;qty\nگندم;12,5\n"),
			want:  "material;qty\nگندم;12,5\n",
		},
		{
			name:  "utf-8 bom is stripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, "supplier;qty\n"...),
			want:  "supplier;qty\n",
		},
		{
			name:  "utf-16le with bom",
			input: []byte{0xFF, 0xFE, 'q', 0x00, 't', 0x00, 'y', 0x00},
			want:  "qty",
		},
		{
			name:  "utf-16be with bom",
			input: []byte{0xFE, 0xFF, 0x00, 'q', 0x00, 't', 0x00, 'y'},
			want:  "qty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			assert.Equal(t, tt.want, readAll(t, r, err))
		})
	}
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(bytes.NewReader(nil))
	assert.Empty(t, readAll(t, r, err))
}

func TestFromCharset(t *testing.T) {
	// "گندم;مقدار" in Windows-1256.
	cp1256 := []byte{0x90, 0xE4, 0xCF, 0xE3, ';', 0xE3, 0xDE, 0xCF, 0xC7, 0xD1}

	r, err := encoding.FromCharset(bytes.NewReader(cp1256), "Windows-1256")
	assert.Equal(t, "گندم;مقدار", readAll(t, r, err))

	r, err = encoding.FromCharset(bytes.NewReader([]byte("as-is")), "UTF-8")
	assert.Equal(t, "as-is", readAll(t, r, err))

	_, err = encoding.FromCharset(bytes.NewReader(nil), "klingon")
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, "utf-8", encoding.Detect([]byte("plain ascii")))
	assert.Equal(t, "utf-16le", encoding.Detect([]byte{0xFF, 0xFE, 'a', 0x00}))
	assert.Equal(t, "utf-16be", encoding.Detect([]byte{0xFE, 0xFF, 0x00, 'a'}))
	assert.Equal(t, "utf-8", encoding.Detect([]byte{0xEF, 0xBB, 0xBF, 'a'}))
}
