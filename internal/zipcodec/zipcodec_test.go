package zipcodec

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoundTripsBzip2AndZstd(t *testing.T) {
	Register()

	for _, method := range []uint16{MethodBzip2, MethodZstd} {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)

		w, err := zw.CreateHeader(&zip.FileHeader{Name: "save.dat", Method: method})
		require.NoError(t, err)
		_, err = w.Write([]byte("hello from a game save"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		require.Len(t, zr.File, 1)

		rc, err := zr.File[0].Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		assert.Equal(t, "hello from a game save", string(data))
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	Register()
}
