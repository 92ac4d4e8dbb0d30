package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config application-wide configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	MaxUploadMB int64      `mapstructure:"max_upload_mb"`
	CORS        CORSConfig `mapstructure:"cors"`
	RateLimit   RateLimit  `mapstructure:"rate_limit"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimit upload throttling (requires redis; disabled without it)
type RateLimit struct {
	Uploads int           `mapstructure:"uploads"`
	Window  time.Duration `mapstructure:"window"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig redis settings. An empty Addr disables redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// IngestConfig document ingestion settings.
//
// Hour constants and keyword lists are institution policy, not universal truths;
// they live here so a deployment can override them without a rebuild.
type IngestConfig struct {
	TempDir           string        `mapstructure:"temp_dir"`
	TempRemoveRetries uint64        `mapstructure:"temp_remove_retries"`
	TempRemoveBackoff time.Duration `mapstructure:"temp_remove_backoff"`
	TempSweepCron     string        `mapstructure:"temp_sweep_cron"`
	TempMaxAge        time.Duration `mapstructure:"temp_max_age"`

	HeaderScanRows   int           `mapstructure:"header_scan_rows"`
	NormalizeWorkers int           `mapstructure:"normalize_workers"`
	PreviewTitles    int           `mapstructure:"preview_titles"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`

	SummarySheetNames []string `mapstructure:"summary_sheet_names"`
	DetailSheetNames  []string `mapstructure:"detail_sheet_names"`

	Stopwords          []string `mapstructure:"stopwords"`
	PlaceholderTitles  []string `mapstructure:"placeholder_titles"`
	PracticumKeywords  []string `mapstructure:"practicum_keywords"`
	FinalWorkKeywords  []string `mapstructure:"final_work_keywords"`
	DefaultDepartment  string   `mapstructure:"default_department"`
	FinalWorkHours     float64  `mapstructure:"final_work_hours"`
	ExamHoursPerExam   float64  `mapstructure:"exam_hours_per_exam"`
	TestHoursPerPass   float64  `mapstructure:"test_hours_per_pass"`
	CourseProjectHours float64  `mapstructure:"course_project_hours"`

	RelinkAfterCurriculum bool `mapstructure:"relink_after_curriculum"`
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KADRSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit.uploads", 30)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "kadrsp")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Europe/Moscow")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	d := DefaultIngest()
	v.SetDefault("ingest.temp_dir", d.TempDir)
	v.SetDefault("ingest.temp_remove_retries", d.TempRemoveRetries)
	v.SetDefault("ingest.temp_remove_backoff", d.TempRemoveBackoff)
	v.SetDefault("ingest.temp_sweep_cron", d.TempSweepCron)
	v.SetDefault("ingest.temp_max_age", d.TempMaxAge)
	v.SetDefault("ingest.header_scan_rows", d.HeaderScanRows)
	v.SetDefault("ingest.normalize_workers", d.NormalizeWorkers)
	v.SetDefault("ingest.preview_titles", d.PreviewTitles)
	v.SetDefault("ingest.lock_ttl", d.LockTTL)
	v.SetDefault("ingest.summary_sheet_names", d.SummarySheetNames)
	v.SetDefault("ingest.detail_sheet_names", d.DetailSheetNames)
	v.SetDefault("ingest.stopwords", d.Stopwords)
	v.SetDefault("ingest.placeholder_titles", d.PlaceholderTitles)
	v.SetDefault("ingest.practicum_keywords", d.PracticumKeywords)
	v.SetDefault("ingest.final_work_keywords", d.FinalWorkKeywords)
	v.SetDefault("ingest.default_department", d.DefaultDepartment)
	v.SetDefault("ingest.final_work_hours", d.FinalWorkHours)
	v.SetDefault("ingest.exam_hours_per_exam", d.ExamHoursPerExam)
	v.SetDefault("ingest.test_hours_per_pass", d.TestHoursPerPass)
	v.SetDefault("ingest.course_project_hours", d.CourseProjectHours)
	v.SetDefault("ingest.relink_after_curriculum", d.RelinkAfterCurriculum)
}

// DefaultIngest returns the built-in ingestion policy. Tests use it directly.
func DefaultIngest() IngestConfig {
	return IngestConfig{
		TempDir:           "temp",
		TempRemoveRetries: 5,
		TempRemoveBackoff: 200 * time.Millisecond,
		TempSweepCron:     "@every 30m",
		TempMaxAge:        6 * time.Hour,

		HeaderScanRows:   10,
		NormalizeWorkers: 4,
		PreviewTitles:    5,
		LockTTL:          2 * time.Minute,

		SummarySheetNames: []string{"плансвод"},
		DetailSheetNames:  []string{"план"},

		Stopwords:          []string{"и", "или", "а", "но", "and", "or"},
		PlaceholderTitles:  []string{"дисциплины по выбору", "элективные дисциплины по выбору"},
		PracticumKeywords:  []string{"практика"},
		FinalWorkKeywords:  []string{"выпускной квалификационной работы", "вкр"},
		DefaultDepartment:  "Кафедра не указана",
		FinalWorkHours:     324,
		ExamHoursPerExam:   36,
		TestHoursPerPass:   4,
		CourseProjectHours: 18,

		RelinkAfterCurriculum: true,
	}
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be within 1-65535")
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("config: server.max_upload_mb must be positive")
	}
	if c.Ingest.TempDir == "" {
		return fmt.Errorf("config: ingest.temp_dir must not be empty")
	}
	if c.Ingest.HeaderScanRows <= 0 {
		return fmt.Errorf("config: ingest.header_scan_rows must be positive")
	}
	if c.Ingest.FinalWorkHours < 0 || c.Ingest.ExamHoursPerExam < 0 ||
		c.Ingest.TestHoursPerPass < 0 || c.Ingest.CourseProjectHours < 0 {
		return fmt.Errorf("config: ingest hour constants must be non-negative")
	}
	return nil
}
