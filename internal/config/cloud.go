package config

// Cloud configures optional sync of the backup directory to a remote via
// the rclone subprocess wrapper in internal/cloudsync.
type Cloud struct {
	Remote      string `yaml:"remote,omitempty" mapstructure:"remote"`
	Path        string `yaml:"path" mapstructure:"path"`
	Synchronize bool   `yaml:"synchronize" mapstructure:"synchronize"`
}

// DefaultCloud matches the original's defaults.
func DefaultCloud() Cloud {
	return Cloud{Path: "vaultkeeper-backup", Synchronize: true}
}

// App locates an external helper binary and the default arguments to
// invoke it with.
type App struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Arguments string `yaml:"arguments" mapstructure:"arguments"`
}

// Apps collects the external helper binaries vaultkeeper can shell out to.
type Apps struct {
	Rclone App `yaml:"rclone" mapstructure:"rclone"`
}

// DefaultApps matches the original's rclone defaults; unlike the original
// we don't probe PATH here (that's the loader's job), so Path starts empty.
func DefaultApps() Apps {
	return Apps{Rclone: App{Arguments: "--fast-list --ignore-checksum"}}
}
