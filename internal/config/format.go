package config

// BackupFormat selects the on-disk layout for a game's backup folder.
type BackupFormat string

const (
	BackupFormatSimple BackupFormat = "simple"
	BackupFormatZip    BackupFormat = "zip"
)

// ZipCompression selects the compression method used inside zip-format
// backups. Matching the original, "none" and "deflate" are handled by
// archive/zip's built-ins; bzip2 and zstd are registered compressors.
type ZipCompression string

const (
	ZipCompressionNone    ZipCompression = "none"
	ZipCompressionDeflate ZipCompression = "deflate"
	ZipCompressionBzip2   ZipCompression = "bzip2"
	ZipCompressionZstd    ZipCompression = "zstd"
)

// LevelRange returns the valid [min, max] compression level for a method,
// or (0, 0, false) for methods with no level (none).
func (z ZipCompression) LevelRange() (min, max int, ok bool) {
	switch z {
	case ZipCompressionDeflate:
		return 1, 9, true
	case ZipCompressionBzip2:
		return 1, 9, true
	case ZipCompressionZstd:
		return -7, 22, true
	default:
		return 0, 0, false
	}
}

func (z ZipCompression) defaultLevel() int {
	switch z {
	case ZipCompressionDeflate, ZipCompressionBzip2:
		return 6
	case ZipCompressionZstd:
		return 10
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Compression holds the per-method level settings; only the level for the
// chosen method is meaningful at any given time, but all are kept so
// switching methods in the UI remembers the previous setting.
type Compression struct {
	DeflateLevel int `yaml:"deflateLevel" mapstructure:"deflateLevel"`
	Bzip2Level   int `yaml:"bzip2Level" mapstructure:"bzip2Level"`
	ZstdLevel    int `yaml:"zstdLevel" mapstructure:"zstdLevel"`
}

// DefaultCompression matches the original's per-method defaults.
func DefaultCompression() Compression {
	return Compression{
		DeflateLevel: ZipCompressionDeflate.defaultLevel(),
		Bzip2Level:   ZipCompressionBzip2.defaultLevel(),
		ZstdLevel:    ZipCompressionZstd.defaultLevel(),
	}
}

// SetLevel clamps and stores value as the level for method.
func (c *Compression) SetLevel(method ZipCompression, value int) {
	lo, hi, ok := method.LevelRange()
	if !ok {
		return
	}
	clamped := clamp(value, lo, hi)
	switch method {
	case ZipCompressionDeflate:
		c.DeflateLevel = clamped
	case ZipCompressionBzip2:
		c.Bzip2Level = clamped
	case ZipCompressionZstd:
		c.ZstdLevel = clamped
	}
}

// Level returns the currently configured level for method, if it has one.
func (c Compression) Level(method ZipCompression) (int, bool) {
	switch method {
	case ZipCompressionDeflate:
		return c.DeflateLevel, true
	case ZipCompressionBzip2:
		return c.Bzip2Level, true
	case ZipCompressionZstd:
		return c.ZstdLevel, true
	default:
		return 0, false
	}
}

// BackupFormats ties together the chosen format and its compression settings.
type BackupFormats struct {
	Chosen      BackupFormat   `yaml:"chosen" mapstructure:"chosen"`
	ZipMethod   ZipCompression `yaml:"zipCompression" mapstructure:"zipCompression"`
	Compression Compression    `yaml:"compression" mapstructure:"compression"`
}

// DefaultBackupFormats matches the original's default: simple format,
// deflate compression if zip is ever chosen.
func DefaultBackupFormats() BackupFormats {
	return BackupFormats{
		Chosen:      BackupFormatSimple,
		ZipMethod:   ZipCompressionDeflate,
		Compression: DefaultCompression(),
	}
}

// Level returns the effective compression level for the chosen format/method.
func (f BackupFormats) Level() (int, bool) {
	if f.Chosen != BackupFormatZip {
		return 0, false
	}
	return f.Compression.Level(f.ZipMethod)
}
