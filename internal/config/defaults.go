package config

const (
	defaultStagingDir             = "~/.local/share/fileforge/staging"
	defaultOutputDir              = "~/.local/share/fileforge/output"
	defaultLogDir                 = "~/.local/share/fileforge/logs"
	defaultAPIBind                = "127.0.0.1:8743"
	defaultWorkerCount            = 5
	defaultJobTimeout             = 600
	defaultQueuePollInterval      = 2
	defaultErrorRetryInterval     = 10
	defaultRetentionHours         = 24
	defaultRetentionSweepInterval = 900
	defaultMaxUploadMiB           = 512
	defaultMinConfidencePercent   = 50
	defaultBusBufferCapacity      = 512
	defaultSofficeBinary          = "soffice"
	defaultFFmpegBinary           = "ffmpeg"
	defaultZipBinary              = "zip"
	defaultUnzipBinary            = "unzip"
	defaultTarBinary              = "tar"
	defaultAssimpBinary           = "assimp"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Workers: Workers{
			Count:              defaultWorkerCount,
			JobTimeout:         defaultJobTimeout,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			RetentionHours:     defaultRetentionHours,
			RetentionSweep:     defaultRetentionSweepInterval,
		},
		Security: Security{
			Enabled:       true,
			FlagArchives:  false,
			MaxUploadMiB:  defaultMaxUploadMiB,
			MinConfidence: defaultMinConfidencePercent,
		},
		Audit: Audit{
			Enabled: true,
		},
		Notifications: Notifications{
			BufferCapacity: defaultBusBufferCapacity,
		},
		Tools: Tools{
			Soffice: defaultSofficeBinary,
			FFmpeg:  defaultFFmpegBinary,
			Zip:     defaultZipBinary,
			Unzip:   defaultUnzipBinary,
			Tar:     defaultTarBinary,
			Assimp:  defaultAssimpBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
