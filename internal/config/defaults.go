package config

const (
	defaultStateDir           = "~/.local/share/oceaneye"
	defaultHistoryFile        = "history.db"
	defaultCatalogURL         = "https://oceaneye-17058-default-rtdb.firebaseio.com/.json"
	defaultCatalogTimeout     = 10
	defaultCatalogUserAgent   = "OceanEye/dev"
	defaultCatalogMaxBodyByte = 8 << 20
	defaultDigestAlgorithm    = "sha256"
	defaultAPIBind            = "127.0.0.1:7480"
	defaultAPIMaxImageBytes   = 20 << 20
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			// LogDir stays empty so it follows state_dir during normalize.
		},
		Catalog: Catalog{
			URL:            defaultCatalogURL,
			TimeoutSeconds: defaultCatalogTimeout,
			UserAgent:      defaultCatalogUserAgent,
			MaxBodyBytes:   defaultCatalogMaxBodyByte,
		},
		Digest: Digest{
			Algorithm: defaultDigestAlgorithm,
		},
		History: History{
			Enabled: true,
		},
		API: API{
			Bind:          defaultAPIBind,
			MaxImageBytes: defaultAPIMaxImageBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
