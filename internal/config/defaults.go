package config

const (
	defaultStagingDir     = "~/.local/share/upscale/staging"
	defaultOutputDir      = "~/upscaled"
	defaultLogDir         = "~/.local/share/upscale/logs"
	defaultBaseURL        = "https://api.image-upscaling.net"
	defaultScale          = 4
	defaultPollInterval   = 10
	defaultMaxAttempts    = 60
	defaultRequestTimeout = 30
	defaultTargetWidthCm  = 26.99
	defaultTargetHeightCm = 38.99
	defaultDPI            = 300
	defaultJPEGQuality    = 95
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Service: Service{
			BaseURL:        defaultBaseURL,
			Scale:          defaultScale,
			FaceEnhance:    false,
			PollInterval:   defaultPollInterval,
			MaxAttempts:    defaultMaxAttempts,
			RequestTimeout: defaultRequestTimeout,
		},
		Output: Output{
			WidthCm:     defaultTargetWidthCm,
			HeightCm:    defaultTargetHeightCm,
			DPI:         defaultDPI,
			JPEGQuality: defaultJPEGQuality,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Runs:           true,
			Passes:         false,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
