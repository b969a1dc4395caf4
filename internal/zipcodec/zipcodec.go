// Package zipcodec registers the non-stdlib compression methods
// (bzip2, zstd) that a BackupFormats.ZipCompression choice may select, so
// archive/zip can read and write them alongside its built-in Store/Deflate.
package zipcodec

import (
	"archive/zip"
	"io"
	"sync"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
)

// Method IDs outside the range reserved by the zip spec for Store/Deflate,
// matching the values ludusavi-style tooling has settled on for these two
// extensions.
const (
	MethodBzip2 uint16 = 12
	MethodZstd  uint16 = 93
)

var registerOnce sync.Once

// Register wires bzip2 and zstd compressors/decompressors into
// archive/zip's global registry. Safe to call multiple times.
func Register() {
	registerOnce.Do(func() {
		zip.RegisterCompressor(MethodBzip2, func(w io.Writer) (io.WriteCloser, error) {
			return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
		})
		zip.RegisterDecompressor(MethodBzip2, func(r io.Reader) io.ReadCloser {
			rc, err := bzip2.NewReader(r, nil)
			if err != nil {
				return io.NopCloser(errReader{err})
			}
			return rc
		})

		zip.RegisterCompressor(MethodZstd, func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		})
		zip.RegisterDecompressor(MethodZstd, func(r io.Reader) io.ReadCloser {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return io.NopCloser(errReader{err})
			}
			return dec.IOReadCloser()
		})
	})
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }
