package config

import "time"

// Default configuration values.
const (
	defaultServiceName        = "governance"
	defaultServiceVersion     = "1.0.0"
	defaultServicePort        = 8080
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBUser             = "postgres"
	defaultDBName             = "governance"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 25
	defaultDBMaxIdleConns     = 5
	defaultESURL              = "http://localhost:9200"
	defaultESIndex            = "knowledge_items"
	defaultESTimeoutSec       = 30
	defaultLogLevel           = "info"
	defaultDuplicateThreshold = 0.70
	defaultWarnThreshold      = 0.50
	defaultTopMatches         = 10
	defaultAsyncScanThreshold = 10000
	defaultScanQueueSize      = 256
	defaultScanRPS            = 50
	defaultStaleAge           = 365 * 24 * time.Hour
	defaultSweepInterval      = 24 * time.Hour
)

// Config holds all configuration for the governance service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Logging       LoggingConfig       `yaml:"logging"`
	Governance    GovernanceConfig    `yaml:"governance"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"GOVERNANCE_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"       yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// ElasticsearchConfig holds settings for the optional candidate prefilter
// index. Disabled unless an URL is configured and enabled is true.
type ElasticsearchConfig struct {
	Enabled bool          `env:"ES_ENABLED" yaml:"enabled"`
	URL     string        `env:"ES_URL"     yaml:"url"`
	Index   string        `yaml:"index"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `env:"LOG_LEVEL" yaml:"level"`
	Development bool   `yaml:"development"`
}

// GovernanceConfig holds scoring engine settings.
type GovernanceConfig struct {
	Similarity SimilarityConfig `yaml:"similarity"`
	Staleness  StalenessConfig  `yaml:"staleness"`
	ScanWorker ScanWorkerConfig `yaml:"scan_worker"`
}

// SimilarityConfig tunes the duplicate detection thresholds.
type SimilarityConfig struct {
	DuplicateThreshold float64 `yaml:"duplicate_threshold"`
	WarnThreshold      float64 `yaml:"warn_threshold"`
	TopMatches         int     `yaml:"top_matches"`
}

// StalenessConfig tunes the stale content sweep.
type StalenessConfig struct {
	AgeThreshold  time.Duration `yaml:"age_threshold"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ScanWorkerConfig tunes the async submission scan worker.
type ScanWorkerConfig struct {
	// AsyncScanThreshold is the corpus size above which submission scans
	// are offloaded to the background worker instead of running inline.
	AsyncScanThreshold int `yaml:"async_scan_threshold"`
	QueueSize          int `yaml:"queue_size"`
	ScansPerSecond     int `yaml:"scans_per_second"`
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setLoggingDefaults(&cfg.Logging)
	setGovernanceDefaults(&cfg.Governance)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.Index == "" {
		e.Index = defaultESIndex
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
}

func setGovernanceDefaults(g *GovernanceConfig) {
	if g.Similarity.DuplicateThreshold == 0 {
		g.Similarity.DuplicateThreshold = defaultDuplicateThreshold
	}
	if g.Similarity.WarnThreshold == 0 {
		g.Similarity.WarnThreshold = defaultWarnThreshold
	}
	if g.Similarity.TopMatches == 0 {
		g.Similarity.TopMatches = defaultTopMatches
	}
	if g.Staleness.AgeThreshold == 0 {
		g.Staleness.AgeThreshold = defaultStaleAge
	}
	if g.Staleness.SweepInterval == 0 {
		g.Staleness.SweepInterval = defaultSweepInterval
	}
	if g.ScanWorker.AsyncScanThreshold == 0 {
		g.ScanWorker.AsyncScanThreshold = defaultAsyncScanThreshold
	}
	if g.ScanWorker.QueueSize == 0 {
		g.ScanWorker.QueueSize = defaultScanQueueSize
	}
	if g.ScanWorker.ScansPerSecond == 0 {
		g.ScanWorker.ScansPerSecond = defaultScanRPS
	}
}
