package config

const (
	defaultMediaDir           = "~/media"
	defaultDataDir            = "~/.local/share/subgen"
	defaultLogDir             = "~/.local/share/subgen/logs"
	defaultAPIBind            = "127.0.0.1:7769"
	defaultSampleRate         = 16000
	defaultSTTTimeoutSeconds  = 300
	defaultSTTMaxAttempts     = 3
	defaultSTTBackoffMillis   = 500
	defaultChunkSeconds       = 30
	defaultOverlapSeconds     = 5
	defaultVADThreshold       = 0.30
	defaultTranslateBatchSize = 100
	defaultTranslateTimeout   = 60
	defaultWorkers            = 2
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaDir: defaultMediaDir,
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		STT: STT{
			SampleRate:     defaultSampleRate,
			TimeoutSeconds: defaultSTTTimeoutSeconds,
			MaxAttempts:    defaultSTTMaxAttempts,
			BackoffMillis:  defaultSTTBackoffMillis,
		},
		Transcribe: Transcribe{
			ChunkSeconds:   defaultChunkSeconds,
			OverlapSeconds: defaultOverlapSeconds,
			VADThreshold:   defaultVADThreshold,
			SkipExisting:   true,
		},
		Translate: Translate{
			BatchSize:      defaultTranslateBatchSize,
			TimeoutSeconds: defaultTranslateTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobStarted:     true,
			JobCompleted:   true,
			Errors:         true,
		},
		Workflow: Workflow{
			Workers:            defaultWorkers,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
