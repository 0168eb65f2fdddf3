package uploadform

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mansoorceksport/fileupload/internal/domain"
)

// File is one picked or dropped file
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// FileFromPath describes a local file. The type comes from the extension and
// falls back to content sniffing, the way a browser fills File.type.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	var head []byte
	if mime.TypeByExtension(filepath.Ext(path)) == "" {
		head, err = readHead(path)
		if err != nil {
			return File{}, err
		}
	}

	return File{
		Name:     filepath.Base(path),
		MIMEType: DetectMIMEType(path, head),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FileFromBytes wraps an in-memory blob
func FileFromBytes(name, mimeType string, data []byte) File {
	return File{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// DetectMIMEType resolves a media type from the file extension, then from head
func DetectMIMEType(name string, head []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return domain.NormalizeMIMEType(byExt)
	}
	if len(head) == 0 {
		return ""
	}
	return domain.NormalizeMIMEType(http.DetectContentType(head))
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}
