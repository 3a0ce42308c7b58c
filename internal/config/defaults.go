package config

const (
	defaultOutputDir  = "~/.local/share/dawprobe/output"
	defaultLogDir     = "~/.local/share/dawprobe/logs"
	defaultCatalogDB  = "~/.local/share/dawprobe/catalog.db"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	defaultMinFreeMiB = 64
)

func defaultExtensions() []string {
	return []string{".als", ".flp", ".logicx"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CatalogDB: defaultCatalogDB,
		},
		Extraction: Extraction{
			Extensions: defaultExtensions(),
			Detailed:   true,
			MinFreeMiB: defaultMinFreeMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
