package config

const (
	defaultConfigPath  = "~/.config/udalist/config.toml"
	defaultHistoryPath = "~/.local/share/udalist/history.db"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// DefaultExtensions is the accepted image extension set, matched case-insensitively.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// Default returns a Config populated with repository defaults. The dataset
// keys (root_dir, source, target) stay empty on purpose.
func Default() Config {
	exts := make([]string, len(DefaultExtensions))
	copy(exts, DefaultExtensions)
	return Config{
		SortFiles:  true,
		Extensions: exts,
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
