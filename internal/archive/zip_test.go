package archive

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yeka/zip"
)

// buildZip writes files in order, encrypting them with AES-256 when password is set.
func buildZip(t *testing.T, password string, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		var (
			fw  io.Writer
			err error
		)
		if password != "" {
			fw, err = w.Encrypt(name, password, zip.AES256Encryption)
		} else {
			fw, err = w.Create(name)
		}
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
