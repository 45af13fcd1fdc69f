package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	CSV          CSVConfig
	RunLog       RunLogConfig
	Generator    GeneratorConfig
	Worker       WorkerConfig
	KPI          KPIConfig
	Alerts       AlertsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SUPPLYPULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"SUPPLYPULSE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SUPPLYPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUPPLYPULSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SUPPLYPULSE_SERVICE_KIND" default:"etl"`
}

// DBConfig describes the optional relational target. When neither a DSN nor the
// discrete host/user/name variables are set, the pipeline runs in CSV-only mode.
type DBConfig struct {
	DSN    string `envconfig:"SUPPLYPULSE_DB_DSN"`
	Driver string `envconfig:"SUPPLYPULSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SUPPLYPULSE_DB_HOST"`
	LegacyPort     int    `envconfig:"SUPPLYPULSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SUPPLYPULSE_DB_USER"`
	LegacyPassword string `envconfig:"SUPPLYPULSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SUPPLYPULSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SUPPLYPULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUPPLYPULSE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SUPPLYPULSE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SUPPLYPULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUPPLYPULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// Configured reports whether any relational target was supplied at all.
func (db DBConfig) Configured() bool {
	return db.DSN != ""
}

type RedisConfig struct {
	URL          string        `envconfig:"SUPPLYPULSE_REDIS_URL"`
	PoolSize     int           `envconfig:"SUPPLYPULSE_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"SUPPLYPULSE_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"SUPPLYPULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUPPLYPULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUPPLYPULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CSVConfig struct {
	Dir string `envconfig:"SUPPLYPULSE_CSV_DIR" default:"data"`
}

type RunLogConfig struct {
	Dir           string `envconfig:"SUPPLYPULSE_RUNLOG_DIR" default:"logs"`
	RetentionDays int    `envconfig:"SUPPLYPULSE_RUNLOG_RETENTION_DAYS" default:"7"`
}

// GeneratorConfig carries per-run record counts and the numeric bounds for
// every randomized field. Bounds are configuration, not constants, so tests and
// deployments can tighten them without a rebuild.
type GeneratorConfig struct {
	Orders    int `envconfig:"SUPPLYPULSE_GENERATOR_ORDERS" default:"25"`
	Inventory int `envconfig:"SUPPLYPULSE_GENERATOR_INVENTORY" default:"100"`
	Products  int `envconfig:"SUPPLYPULSE_GENERATOR_PRODUCTS" default:"100"`
	Suppliers int `envconfig:"SUPPLYPULSE_GENERATOR_SUPPLIERS" default:"20"`

	LeadTimeMinDays int `envconfig:"SUPPLYPULSE_GEN_LEAD_TIME_MIN_DAYS" default:"5" validate:"gte=1"`
	LeadTimeMaxDays int `envconfig:"SUPPLYPULSE_GEN_LEAD_TIME_MAX_DAYS" default:"20" validate:"gtefield=LeadTimeMinDays"`

	QualityRatingMin float64 `envconfig:"SUPPLYPULSE_GEN_QUALITY_MIN" default:"3.5" validate:"gte=0,lte=5"`
	QualityRatingMax float64 `envconfig:"SUPPLYPULSE_GEN_QUALITY_MAX" default:"5.0" validate:"gtefield=QualityRatingMin,lte=5"`

	UnitCostAMin float64 `envconfig:"SUPPLYPULSE_GEN_UNIT_COST_A_MIN" default:"100" validate:"gt=0"`
	UnitCostAMax float64 `envconfig:"SUPPLYPULSE_GEN_UNIT_COST_A_MAX" default:"500" validate:"gtefield=UnitCostAMin"`
	UnitCostBMin float64 `envconfig:"SUPPLYPULSE_GEN_UNIT_COST_B_MIN" default:"50" validate:"gt=0"`
	UnitCostBMax float64 `envconfig:"SUPPLYPULSE_GEN_UNIT_COST_B_MAX" default:"150" validate:"gtefield=UnitCostBMin"`
	UnitCostCMin float64 `envconfig:"SUPPLYPULSE_GEN_UNIT_COST_C_MIN" default:"10" validate:"gt=0"`
	UnitCostCMax float64 `envconfig:"SUPPLYPULSE_GEN_UNIT_COST_C_MAX" default:"75" validate:"gtefield=UnitCostCMin"`

	// Happy-path rule: an order is process-compliant only when both checks pass.
	MRPCompliantRate   float64 `envconfig:"SUPPLYPULSE_GEN_MRP_COMPLIANT_RATE" default:"0.85" validate:"gte=0,lte=1"`
	SetupCompliantRate float64 `envconfig:"SUPPLYPULSE_GEN_SETUP_COMPLIANT_RATE" default:"0.80" validate:"gte=0,lte=1"`

	DelayProbability         float64 `envconfig:"SUPPLYPULSE_GEN_DELAY_PROBABILITY" default:"0.30" validate:"gte=0,lte=1"`
	DelayProbabilityTrusted  float64 `envconfig:"SUPPLYPULSE_GEN_DELAY_PROBABILITY_TRUSTED" default:"0.15" validate:"gte=0,lte=1"`
	TrustedQualityThreshold  float64 `envconfig:"SUPPLYPULSE_GEN_TRUSTED_QUALITY_THRESHOLD" default:"4.0" validate:"gte=0,lte=5"`
	CarryingCostRate         float64 `envconfig:"SUPPLYPULSE_GEN_CARRYING_COST_RATE" default:"0.25" validate:"gte=0,lte=1"`
	AnnualDemandAssumption   float64 `envconfig:"SUPPLYPULSE_GEN_ANNUAL_DEMAND" default:"1000" validate:"gt=0"`
	QualityCostRate          float64 `envconfig:"SUPPLYPULSE_GEN_QUALITY_COST_RATE" default:"0.001" validate:"gte=0"`
	LatePenaltyRatePerDay    float64 `envconfig:"SUPPLYPULSE_GEN_LATE_PENALTY_RATE" default:"0.0005" validate:"gte=0"`
	Seed                     int64   `envconfig:"SUPPLYPULSE_GEN_SEED" default:"0"`
}

type WorkerConfig struct {
	Interval    time.Duration `envconfig:"SUPPLYPULSE_WORKER_INTERVAL" default:"24h"`
	MetricsPort string        `envconfig:"SUPPLYPULSE_WORKER_METRICS_PORT" default:"9091"`
}

type KPIConfig struct {
	CacheTTL         time.Duration `envconfig:"SUPPLYPULSE_KPI_CACHE_TTL" default:"5m"`
	RecentOrderLimit int           `envconfig:"SUPPLYPULSE_KPI_RECENT_ORDER_LIMIT" default:"5000"`
	ServiceLevel     float64       `envconfig:"SUPPLYPULSE_KPI_SERVICE_LEVEL" default:"0.95"`
}

type AlertsConfig struct {
	Enabled           bool   `envconfig:"SUPPLYPULSE_ALERTS_ENABLED" default:"false"`
	SMTPHost          string `envconfig:"SUPPLYPULSE_ALERTS_SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort          int    `envconfig:"SUPPLYPULSE_ALERTS_SMTP_PORT" default:"587"`
	Username          string `envconfig:"SUPPLYPULSE_ALERTS_SMTP_USER"`
	Password          string `envconfig:"SUPPLYPULSE_ALERTS_SMTP_PASSWORD"`
	SupervisorEmail   string `envconfig:"SUPPLYPULSE_ALERTS_SUPERVISOR_EMAIL"`
	CriticalThreshold int    `envconfig:"SUPPLYPULSE_ALERTS_CRITICAL_THRESHOLD" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SUPPLYPULSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SUPPLYPULSE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	// Nothing configured at all means CSV-only mode, not an error.
	if db.LegacyHost == "" && db.LegacyUser == "" && db.LegacyName == "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

// Retention returns the run-log retention window as a duration.
func (r RunLogConfig) Retention() time.Duration {
	days := r.RetentionDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
