package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Setting keys. Each one can also be set through the BARGAIN_ environment,
// with dots and dashes mapped to underscores (archive.dsn -> BARGAIN_ARCHIVE_DSN).
const (
	KeyProfile        = "profile"
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyArchiveBackend = "archive.backend"
	KeyArchivePath    = "archive.path"
	KeyArchiveDSN     = "archive.dsn"
	KeyArchiveTTL     = "archive.ttl"
	KeyArchiveKeys    = "archive.keys"
	KeyArchiveRedact  = "archive.redact"
	KeyRedisAddr      = "redis.addr"
	KeyRedisPassword  = "redis.password"
	KeyRedisDB        = "redis.db"
	KeyPort           = "port"
	KeyMetrics        = "metrics"
	KeyIdleTimeout    = "idle-timeout"
)

// Archive backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

const envPrefix = "BARGAIN"

// Settings are the process-level knobs shared by every command.
type Settings struct {
	Profile        string
	LogLevel       string
	LogFormat      string
	ArchiveBackend string
	ArchivePath    string
	ArchiveDSN     string
	ArchiveTTL     time.Duration
	ArchiveKeys    []string
	ArchiveRedact  []string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	Port           int
	Metrics        bool
	IdleTimeout    time.Duration
}

// NewViper returns a viper instance with defaults and BARGAIN_* env binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyArchiveBackend, BackendMemory)
	v.SetDefault(KeyArchivePath, ".bargain/transcripts")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeyMetrics, true)
	return v
}

// LoadSettings reads the optional config file into v and resolves Settings.
// A missing config file is not an error when path is empty.
func LoadSettings(v *viper.Viper, path string) (Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("bargain")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	s := Settings{
		Profile:        v.GetString(KeyProfile),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		ArchiveBackend: strings.ToLower(v.GetString(KeyArchiveBackend)),
		ArchivePath:    v.GetString(KeyArchivePath),
		ArchiveDSN:     v.GetString(KeyArchiveDSN),
		ArchiveTTL:     v.GetDuration(KeyArchiveTTL),
		ArchiveKeys:    v.GetStringSlice(KeyArchiveKeys),
		ArchiveRedact:  v.GetStringSlice(KeyArchiveRedact),
		RedisAddr:      v.GetString(KeyRedisAddr),
		RedisPassword:  v.GetString(KeyRedisPassword),
		RedisDB:        v.GetInt(KeyRedisDB),
		Port:           v.GetInt(KeyPort),
		Metrics:        v.GetBool(KeyMetrics),
		IdleTimeout:    v.GetDuration(KeyIdleTimeout),
	}
	return s, s.Validate()
}

// Validate checks the backend selection and its required fields.
func (s Settings) Validate() error {
	switch s.ArchiveBackend {
	case BackendMemory, BackendRedis:
	case BackendFile:
		if s.ArchivePath == "" {
			return errors.New("file archive requires archive.path")
		}
	case BackendSQLite, BackendMySQL:
		if s.ArchiveDSN == "" {
			return fmt.Errorf("%s archive requires archive.dsn", s.ArchiveBackend)
		}
	default:
		return fmt.Errorf("unknown archive backend %q", s.ArchiveBackend)
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	return nil
}
