package config

const (
	defaultStateDir            = "~/.local/state/pimo"
	defaultLogDir              = "~/.local/share/pimo/logs"
	defaultServicesFile        = "~/.config/pimo/services.rotate"
	defaultSystemctlCmd        = "systemctl"
	defaultActionTimeout       = 10
	defaultRotationPeriodMin   = 120
	defaultRotationMinSliceSec = 300
	defaultSyncDefaultMinutes  = 25
	defaultSyncMaxMinutes      = 240
	defaultRelayMaxPerRun      = 5
	defaultRelayRequestTimeout = 5
	defaultRelayUserAgent      = "pimo-relay/1.0"
	defaultRelaySchedule       = "@every 10m"
	defaultSplashBudgetSeconds = 3
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Rotation: Rotation{
			ServicesFile:  defaultServicesFile,
			SystemctlCmd:  defaultSystemctlCmd,
			ActionTimeout: defaultActionTimeout,
			PeriodMinutes: defaultRotationPeriodMin,
			MinSliceSecs:  defaultRotationMinSliceSec,
		},
		Sync: Sync{
			DefaultMinutes: defaultSyncDefaultMinutes,
			MaxMinutes:     defaultSyncMaxMinutes,
		},
		Relay: Relay{
			MaxPerRun:      defaultRelayMaxPerRun,
			RequestTimeout: defaultRelayRequestTimeout,
			UserAgent:      defaultRelayUserAgent,
			Schedule:       defaultRelaySchedule,
		},
		Splash: Splash{
			BudgetSeconds: defaultSplashBudgetSeconds,
			DiskPath:      "/",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
