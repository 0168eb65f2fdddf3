package uploadform

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFromPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		filename string
		content  []byte
		wantType string
	}{
		{filename: "photo.JPG", content: []byte{0xff, 0xd8, 0xff}, wantType: "image/jpeg"},
		{filename: "scan.png", content: []byte("\x89PNG\r\n\x1a\n"), wantType: "image/png"},
		{filename: "doc.pdf", content: []byte("%PDF-1.7"), wantType: "application/pdf"},
		{filename: "noext", content: []byte("%PDF-1.7\n"), wantType: "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			path := filepath.Join(dir, tt.filename)
			require.NoError(t, os.WriteFile(path, tt.content, 0o644))

			f, err := FileFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, tt.filename, f.Name)
			assert.Equal(t, tt.wantType, f.MIMEType)
			assert.Equal(t, int64(len(tt.content)), f.Size)

			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, tt.content, data)
		})
	}
}

func TestFileFromPathErrors(t *testing.T) {
	_, err := FileFromPath(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, err = FileFromPath(t.TempDir())
	assert.Error(t, err)
}
