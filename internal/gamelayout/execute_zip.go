package gamelayout

import (
	"archive/zip"
	"compress/flate"
	"io"
	"os"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/registrystore"
	"vaultkeeper/internal/strictpath"
	"vaultkeeper/internal/zipcodec"
)

// executeZip writes plan's files into a single {backup-name}.zip archive,
// one entry per file named "drive-X/remainder", plus a registry.yaml entry
// when the plan carries registry content.
func (g *GameLayout) executeZip(plan BackupPlan, format config.BackupFormats) BackupInfo {
	archivePath := strictpath.New(g.Path.Render() + "/" + plan.Backup.Name())
	native, err := archivePath.Interpret()
	if err != nil {
		return failAll(plan)
	}
	if err := os.MkdirAll(parentDir(native), 0o755); err != nil {
		return failAll(plan)
	}

	out, err := os.Create(native)
	if err != nil {
		return failAll(plan)
	}
	defer out.Close()

	zipcodec.Register()
	zw := zip.NewWriter(out)
	method := zipMethodFor(format.ZipMethod)
	if level, ok := format.Level(); ok && format.ZipMethod == config.ZipCompressionDeflate {
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, level)
		})
	}

	var info BackupInfo
	for _, f := range plan.Files {
		if err := writeZipEntry(zw, g.gameFileForZip(f.OriginalPath), f.OriginalPath, method); err != nil {
			info.addFailedFile(f.OriginalPath)
		}
	}

	if len(plan.RegistryPayload) > 0 {
		if data, err := registrystore.Marshal(plan.RegistryPayload); err == nil {
			if w, err := zw.Create("registry.yaml"); err == nil {
				_, _ = w.Write(data)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return failAll(plan)
	}
	return info
}

func failAll(plan BackupPlan) BackupInfo {
	var info BackupInfo
	for _, f := range plan.Files {
		info.addFailedFile(f.OriginalPath)
	}
	return info
}

func zipMethodFor(zc config.ZipCompression) uint16 {
	switch zc {
	case config.ZipCompressionDeflate:
		return zip.Deflate
	case config.ZipCompressionBzip2:
		return zipcodec.MethodBzip2
	case config.ZipCompressionZstd:
		return zipcodec.MethodZstd
	default:
		return zip.Store
	}
}

func writeZipEntry(zw *zip.Writer, entryName string, originalPath string, method uint16) error {
	source := strictpath.New(originalPath)
	src, err := source.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	header := &zip.FileHeader{Name: entryName, Method: method}
	if mtime, err := source.MTimeZip(); err == nil {
		header.Modified = mtime
	}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	buf := make([]byte, 1024)
	_, err = io.CopyBuffer(w, src, buf)
	return err
}
