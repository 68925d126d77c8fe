package config

import "time"

const (
	defaultAPIURL       = "https://deep-art.k8s.akvelon.net/api"
	defaultHTTPTimeout  = 100 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultPollStep     = 2 * time.Second
	defaultMediaType    = "IMAGE"
	defaultStateDir     = "~/.local/share/deepart"
	defaultSQLiteName   = "markers.db"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// DefaultFileMasks are the file types the conversion service accepts.
var DefaultFileMasks = []string{"*.png", "*.jpg", "*.jpeg"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			URL:          defaultAPIURL,
			HTTPTimeout:  Duration(defaultHTTPTimeout),
			PollInterval: Duration(defaultPollInterval),
			PollStep:     Duration(defaultPollStep),
		},
		Convert: Convert{
			MediaType:        defaultMediaType,
			FileMasks:        append([]string(nil), DefaultFileMasks...),
			ConfirmOverwrite: true,
		},
		Markers: Markers{
			Reports: ReportsNone,
			Store:   StoreFiles,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
