package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"survey-registry/internal/models"
)

// ErrInvalid marks a configuration that cannot drive a run.
var ErrInvalid = errors.New("invalid config")

// Storage drivers understood by store.Open.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// Config is everything a pipeline run or the read server needs.
type Config struct {
	Sources         []string         `yaml:"sources"`
	AttendanceDir   string           `yaml:"attendance_dir"`
	Storage         StorageConfig    `yaml:"storage"`
	Columns         ColumnConfig     `yaml:"columns"`
	Handles         HandleConfig     `yaml:"handles"`
	Attendance      AttendanceConfig `yaml:"attendance"`
	MetricsTextfile string           `yaml:"metrics_textfile"`
	Log             LogConfig        `yaml:"log"`
	Server          ServerConfig     `yaml:"server"`
}

// StorageConfig selects where the snapshot document is written.
type StorageConfig struct {
	Driver      string   `yaml:"driver"`
	Path        string   `yaml:"path"`
	SQLitePath  string   `yaml:"sqlite_path"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	S3          S3Config `yaml:"s3"`
}

// S3Config addresses a single snapshot object.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Key       string `yaml:"key"`
	PathStyle bool   `yaml:"path_style"`
}

// ColumnConfig is the static header classification table.
// Contact variants are checked per category in models.Categories order.
type ColumnConfig struct {
	Contact     map[models.Category][]string `yaml:"contact"`
	Admin       []string                     `yaml:"admin"`
	Decorations []string                     `yaml:"decorations"`
}

// HandleConfig controls messaging-handle cleanup.
type HandleConfig struct {
	Marker         string   `yaml:"marker"`
	NoHandleTokens []string `yaml:"no_handle_tokens"`
}

// AttendanceConfig holds status codes and name matching knobs.
type AttendanceConfig struct {
	Present        string   `yaml:"present"`
	PresentAlt     string   `yaml:"present_alt"`
	Justified      string   `yaml:"justified"`
	StopWords      []string `yaml:"stop_words"`
	MatchThreshold float64  `yaml:"match_threshold"`
	ShortNameWords int      `yaml:"short_name_words"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration the registry was originally run with.
func Default() Config {
	sources := []string{
		"2023-1.csv", "2023-2.csv",
		"2024-1.csv", "2024-2.csv",
		"2024-2-batalla.csv", "2024-2-concordia.csv",
		"general-interest.csv",
	}
	for i, s := range sources {
		sources[i] = "./sources/" + s
	}

	return Config{
		Sources:       sources,
		AttendanceDir: "./sources/attendance",
		Storage: StorageConfig{
			Driver:     DriverFile,
			Path:       "crmdata.json",
			SQLitePath: "registry.db",
			S3:         S3Config{Region: "us-east-1", Key: "registry/crmdata.json"},
		},
		Columns: ColumnConfig{
			Contact: map[models.Category][]string{
				models.CategoryName:    {"Nombre", "👤", "Nombre Completo", "Nombre completo"},
				models.CategoryEmail:   {"Correo", "✉️", "Correo UC", "Dirección de correo electrónico"},
				models.CategoryHandle:  {"Telegram", "📲"},
				models.CategoryProgram: {"Carrera", "Grado", "🎓", "Carrera/Grado"},
				models.CategoryCohort:  {"Generación", "Generacion", "👋"},
			},
			Admin: []string{
				"marca temporal", "estado", "prioridad", "puntuación",
				"observaciones", "salvageable", "razones", "promedio", "notas", "preferencia",
				"dirección de correo electrónico",
			},
			Decorations: []string{"👤", "✉️", "📲", "🎓", "👋", "🤔", "👩‍💻", "💬", "📝", "🤖", "🙌"},
		},
		Handles: HandleConfig{
			Marker:         "@",
			NoHandleTokens: []string{"no tengo", "no", "none", "0", "n/a", "-"},
		},
		Attendance: AttendanceConfig{
			Present:        "A",
			PresentAlt:     "X",
			Justified:      "J",
			StopWords:      []string{"de", "del", "la", "las", "los", "y", "e", "don", "doña", "dr", "dra"},
			MatchThreshold: 0.5,
			ShortNameWords: 2,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:           ":8001",
			AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from REGISTRY_* variables.
//
//	REGISTRY_SOURCES: comma separated source paths
//	REGISTRY_ATTENDANCE_DIR
//	REGISTRY_STORAGE_DRIVER: file|sqlite|postgres|s3
//	REGISTRY_OUTPUT_PATH, REGISTRY_SQLITE_PATH, REGISTRY_POSTGRES_DSN
//	REGISTRY_S3_BUCKET, REGISTRY_S3_REGION, REGISTRY_S3_ENDPOINT, REGISTRY_S3_KEY, REGISTRY_S3_PATH_STYLE
//	REGISTRY_METRICS_TEXTFILE, REGISTRY_LOG_LEVEL, REGISTRY_LOG_FORMAT
//	PORT: server listen port
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("REGISTRY_SOURCES"); ok && strings.TrimSpace(v) != "" {
		var sources []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		c.Sources = sources
	}
	str("REGISTRY_ATTENDANCE_DIR", &c.AttendanceDir)
	str("REGISTRY_STORAGE_DRIVER", &c.Storage.Driver)
	str("REGISTRY_OUTPUT_PATH", &c.Storage.Path)
	str("REGISTRY_SQLITE_PATH", &c.Storage.SQLitePath)
	str("REGISTRY_POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("REGISTRY_S3_BUCKET", &c.Storage.S3.Bucket)
	str("REGISTRY_S3_REGION", &c.Storage.S3.Region)
	str("REGISTRY_S3_ENDPOINT", &c.Storage.S3.Endpoint)
	str("REGISTRY_S3_KEY", &c.Storage.S3.Key)
	if v, ok := lookup("REGISTRY_S3_PATH_STYLE"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Storage.S3.PathStyle = b
		}
	}
	str("REGISTRY_METRICS_TEXTFILE", &c.MetricsTextfile)
	str("REGISTRY_LOG_LEVEL", &c.Log.Level)
	str("REGISTRY_LOG_FORMAT", &c.Log.Format)
	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		c.Server.Addr = ":" + strings.TrimSpace(v)
	}
}

// Validate checks the fields a run depends on.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Path == "" {
			invalid("storage.path required for file driver")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			invalid("storage.sqlite_path required for sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			invalid("storage.postgres_dsn required for postgres driver")
		}
	case DriverS3:
		if c.Storage.S3.Bucket == "" {
			invalid("storage.s3.bucket required for s3 driver")
		}
		if c.Storage.S3.Key == "" {
			invalid("storage.s3.key required for s3 driver")
		}
	default:
		invalid("unknown storage driver %q", c.Storage.Driver)
	}

	a := c.Attendance
	if a.Present == "" || a.Justified == "" {
		invalid("attendance status codes must not be empty")
	}
	if a.Present == a.Justified || (a.PresentAlt != "" && a.PresentAlt == a.Justified) {
		invalid("justified code must differ from attended codes")
	}
	if a.MatchThreshold <= 0 || a.MatchThreshold > 1 {
		invalid("attendance.match_threshold must be in (0, 1], got %v", a.MatchThreshold)
	}
	if a.ShortNameWords < 0 {
		invalid("attendance.short_name_words must not be negative")
	}
	if len(c.Columns.Contact) == 0 {
		invalid("columns.contact must list at least one category")
	}
	for cat := range c.Columns.Contact {
		if !knownCategory(cat) {
			invalid("unknown contact category %q", cat)
		}
	}

	return errors.Join(errs...)
}

func knownCategory(cat models.Category) bool {
	for _, c := range models.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
