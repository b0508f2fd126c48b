package health

import (
	"time"

	"github.com/vyrodovalexey/avaprobe/internal/config"
)

// Settings is the runtime configuration of an Aggregator. It is replaced
// as a whole on configuration reload.
type Settings struct {
	App AppInfo

	// ExpectedToken is compared with the report token. Empty never matches.
	ExpectedToken string

	// Local bypasses report authorization.
	Local bool

	StoragePath        string
	DiskWarningPercent float64
	DiskErrorPercent   float64

	CacheKeyPrefix string
	CacheTTL       time.Duration

	// ProbeTimeout bounds each probe. Zero disables the bound.
	ProbeTimeout time.Duration

	ConcurrentReport bool
}

// DefaultSettings returns settings matching the configuration defaults.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.DefaultConfig())
}

// SettingsFromConfig derives settings from a loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		App: AppInfo{
			Name:        cfg.App.Name,
			Environment: cfg.App.Environment,
			Debug:       cfg.App.Debug,
			Version:     cfg.App.Version,
		},
		ExpectedToken:      cfg.Health.Token,
		Local:              cfg.IsLocal(),
		StoragePath:        cfg.Health.StoragePath,
		DiskWarningPercent: cfg.Health.DiskWarningPercent,
		DiskErrorPercent:   cfg.Health.DiskErrorPercent,
		CacheKeyPrefix:     cfg.Health.CacheKeyPrefix,
		CacheTTL:           cfg.Health.CacheTTL.Duration(),
		ProbeTimeout:       cfg.Health.ProbeTimeout.Duration(),
		ConcurrentReport:   cfg.Health.ConcurrentReport,
	}
}
