// Package config loads the service configuration from the environment, with
// an optional local .env file. Every knob has a default; invalid values
// panic at startup and nowhere else.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the risk-scoring service.
type Config struct {
	Env         string // Env is the current environment: local, dev, prod.
	HTTPPort    int    // HTTPPort is the API listener port.
	MonitorPort int    // MonitorPort is the health/metrics listener port.

	WeatherProvider  string        // WeatherProvider selects the forecast client: openweather, openmeteo.
	WeatherAPIKey    string        // WeatherAPIKey is required for openweather.
	WeatherRateLimit int           // WeatherRateLimit caps provider requests per second.
	WeatherSamples   int           // WeatherSamples is forecast points per assessed route.
	RoutingProvider  string        // RoutingProvider selects the route client: searoute, greatcircle.
	RoutingURL       string        // RoutingURL is the sea-route service base URL, required for searoute.
	GeocoderAPIKey   string        // GeocoderAPIKey enables the Google Maps port fallback when set.
	ProviderTimeout  time.Duration // ProviderTimeout bounds each outbound provider call.

	IncidentSource string        // IncidentSource selects the dataset backend: csv, postgres.
	IncidentPath   string        // IncidentPath is the CSV dataset location.
	ReloadInterval time.Duration // ReloadInterval enables the periodic watcher when positive.
	PortIndexPath  string        // PortIndexPath is the WPI CSV location.

	Risk RiskConfig

	Workers         int           // Workers bounds the alternatives worker pool.
	MaxAlternatives int           // MaxAlternatives caps candidate destinations per request.
	ShutdownTimeout time.Duration // ShutdownTimeout bounds graceful HTTP shutdown.

	Database PostgresConfig
}

// RiskConfig carries the scoring and classification constants. They are
// operational estimates, so deployments tune them without a rebuild.
type RiskConfig struct {
	RadiusKm             float64
	IncidentWeight       float64
	WeatherWeight        float64
	ScoreCap             float64
	ModerateWindKph      float64
	SevereWindKph        float64
	IntervalKm           float64
	CautionThreshold     float64
	HighRiskThreshold    float64
	WeatherMaxDistanceKm float64
}

// PostgresConfig holds the connection details for the incident mirror.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN renders the pgx connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", p.User, p.Password, p.Host, p.Port, p.Name)
}

// MustLoad reads the environment (SEARISK_ prefix, dots become underscores)
// and returns the configuration. It panics on invalid values.
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := viper.New()
	vpr.SetEnvPrefix("SEARISK")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	setDefaults(vpr)

	cfg := &Config{
		Env:         vpr.GetString("env"),
		HTTPPort:    vpr.GetInt("http.port"),
		MonitorPort: vpr.GetInt("monitor.port"),

		WeatherProvider:  vpr.GetString("weather.provider"),
		WeatherAPIKey:    vpr.GetString("weather.key"),
		WeatherRateLimit: vpr.GetInt("weather.rate.limit"),
		WeatherSamples:   vpr.GetInt("weather.samples"),
		RoutingProvider:  vpr.GetString("routing.provider"),
		RoutingURL:       vpr.GetString("routing.url"),
		GeocoderAPIKey:   vpr.GetString("geocoder.key"),
		ProviderTimeout:  vpr.GetDuration("provider.timeout"),

		IncidentSource: vpr.GetString("incidents.source"),
		IncidentPath:   vpr.GetString("incidents.path"),
		ReloadInterval: vpr.GetDuration("incidents.reload.interval"),
		PortIndexPath:  vpr.GetString("ports.path"),

		Risk: RiskConfig{
			RadiusKm:             vpr.GetFloat64("risk.radius.km"),
			IncidentWeight:       vpr.GetFloat64("risk.incident.weight"),
			WeatherWeight:        vpr.GetFloat64("risk.weather.weight"),
			ScoreCap:             vpr.GetFloat64("risk.score.cap"),
			ModerateWindKph:      vpr.GetFloat64("risk.wind.moderate.kph"),
			SevereWindKph:        vpr.GetFloat64("risk.wind.severe.kph"),
			IntervalKm:           vpr.GetFloat64("risk.interval.km"),
			CautionThreshold:     vpr.GetFloat64("risk.caution.threshold"),
			HighRiskThreshold:    vpr.GetFloat64("risk.highrisk.threshold"),
			WeatherMaxDistanceKm: vpr.GetFloat64("risk.weather.max.distance.km"),
		},

		Workers:         vpr.GetInt("workers"),
		MaxAlternatives: vpr.GetInt("max.alternatives"),
		ShutdownTimeout: vpr.GetDuration("shutdown.timeout"),

		Database: PostgresConfig{
			Host:     vpr.GetString("db.host"),
			Port:     vpr.GetString("db.port"),
			User:     vpr.GetString("db.user"),
			Password: vpr.GetString("db.password"),
			Name:     vpr.GetString("db.name"),
		},
	}

	mustValidate(cfg)

	return cfg
}

func setDefaults(vpr *viper.Viper) {
	vpr.SetDefault("env", "production")
	vpr.SetDefault("http.port", 8080)
	vpr.SetDefault("monitor.port", 9090)

	vpr.SetDefault("weather.provider", "openmeteo")
	vpr.SetDefault("weather.key", "")
	vpr.SetDefault("weather.rate.limit", 5)
	vpr.SetDefault("weather.samples", 4)
	vpr.SetDefault("routing.provider", "greatcircle")
	vpr.SetDefault("routing.url", "")
	vpr.SetDefault("geocoder.key", "")
	vpr.SetDefault("provider.timeout", "15s")

	vpr.SetDefault("incidents.source", "csv")
	vpr.SetDefault("incidents.path", "data/incidents.csv")
	vpr.SetDefault("incidents.reload.interval", "0s")
	vpr.SetDefault("ports.path", "data/wpi.csv")

	vpr.SetDefault("risk.radius.km", 50.0)
	vpr.SetDefault("risk.incident.weight", 0.7)
	vpr.SetDefault("risk.weather.weight", 0.3)
	vpr.SetDefault("risk.score.cap", 2.0)
	vpr.SetDefault("risk.wind.moderate.kph", 30.0)
	vpr.SetDefault("risk.wind.severe.kph", 60.0)
	vpr.SetDefault("risk.interval.km", 25.0)
	vpr.SetDefault("risk.caution.threshold", 0.3)
	vpr.SetDefault("risk.highrisk.threshold", 0.6)
	vpr.SetDefault("risk.weather.max.distance.km", 500.0)

	vpr.SetDefault("workers", 4)
	vpr.SetDefault("max.alternatives", 10)
	vpr.SetDefault("shutdown.timeout", "10s")

	vpr.SetDefault("db.host", "")
	vpr.SetDefault("db.port", "5432")
	vpr.SetDefault("db.user", "")
	vpr.SetDefault("db.password", "")
	vpr.SetDefault("db.name", "")
}

// mustValidate panics on values no deployment can run with.
func mustValidate(cfg *Config) {
	const maxPort = 65535

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > maxPort {
		panic(fmt.Sprintf("invalid http port: %d", cfg.HTTPPort))
	}
	if cfg.MonitorPort <= 0 || cfg.MonitorPort > maxPort {
		panic(fmt.Sprintf("invalid monitor port: %d", cfg.MonitorPort))
	}
	if cfg.Workers <= 0 {
		panic(fmt.Sprintf("invalid worker count: %d", cfg.Workers))
	}
	if cfg.MaxAlternatives <= 0 {
		panic(fmt.Sprintf("invalid max alternatives: %d", cfg.MaxAlternatives))
	}
	if cfg.WeatherSamples < 0 {
		panic(fmt.Sprintf("invalid weather sample count: %d", cfg.WeatherSamples))
	}
	if cfg.Risk.RadiusKm <= 0 {
		panic(fmt.Sprintf("invalid incident radius: %v", cfg.Risk.RadiusKm))
	}
	if cfg.Risk.IntervalKm <= 0 {
		panic(fmt.Sprintf("invalid resample interval: %v", cfg.Risk.IntervalKm))
	}
	if cfg.Risk.ScoreCap <= 0 {
		panic(fmt.Sprintf("invalid score cap: %v", cfg.Risk.ScoreCap))
	}
	if cfg.Risk.IncidentWeight < 0 || cfg.Risk.WeatherWeight < 0 {
		panic("risk weights must be non-negative")
	}
	if cfg.Risk.CautionThreshold >= cfg.Risk.HighRiskThreshold {
		panic(fmt.Sprintf("caution threshold %v must be below high-risk threshold %v",
			cfg.Risk.CautionThreshold, cfg.Risk.HighRiskThreshold))
	}
}
