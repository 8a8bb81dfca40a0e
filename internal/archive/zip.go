package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yeka/zip"
)

// ZipArchive is a zip archive held in memory. Encrypted entries (ZipCrypto
// or AES) are opened with the archive password.
type ZipArchive struct {
	reader *zip.Reader
}

// OpenZip opens a zip archive from its bytes.
func OpenZip(data []byte) (*ZipArchive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}
	return &ZipArchive{reader: r}, nil
}

// Entries implements Archive.
func (z *ZipArchive) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(z.reader.File))
	for _, f := range z.reader.File {
		entries = append(entries, zipEntry{f})
	}
	return entries, nil
}

type zipEntry struct {
	file *zip.File
}

func (e zipEntry) Name() string      { return e.file.Name }
func (e zipEntry) IsDir() bool       { return e.file.FileInfo().IsDir() }
func (e zipEntry) IsEncrypted() bool { return e.file.IsEncrypted() }

func (e zipEntry) Open(password string) (io.ReadCloser, error) {
	if e.file.IsEncrypted() {
		e.file.SetPassword(password)
	}
	return e.file.Open()
}
