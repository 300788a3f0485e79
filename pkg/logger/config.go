package logger

// Environment names accepted by WithEnvironment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config is the environment driven logger configuration.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"shutterdesk"`
	Level       string `env:"LOG_LEVEL" envDefault:""`
}

// Options turns cfg into factory options. An explicit Level overrides the
// environment default.
func (cfg Config) Options() []Option {
	opts := []Option{WithEnvironment(cfg.Environment, cfg.ServiceName)}
	if cfg.Level != "" {
		opts = append(opts, WithLevelName(cfg.Level))
	}
	return opts
}
