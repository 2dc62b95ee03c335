package config

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds every runtime option of the service.
type Settings struct {
	Environment string
	ServerPort  string
	GinMode     string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DBDSN      string
	DebugSQL   bool

	MediaRoot   string
	MediaURL    string
	TemplateDir string

	Converter           string
	LibreOfficePath     string
	ConversionTimeout   time.Duration
	DocumentDisposition string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite string
	CookiePath     string
	CookieDomain   string

	GoogleClientID string

	AppBaseURL       string
	PasswordResetTTL time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	FacultyCacheTTL time.Duration

	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFrom          string
	SMTPSkipTLSVerify bool

	SweeperSchedule   string
	SweeperStaleAfter time.Duration

	LogFile        string
	LogAccessToken string
	AllowedOrigins []string
}

// Current is the settings snapshot loaded by Load.
var Current = Defaults()

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_DATABASE", "rkive")
	v.SetDefault("DB_USERNAME", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DEBUG_SQL", false)
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("TEMPLATE_DIR", filepath.Join("templates", "word_templates"))
	v.SetDefault("CONVERTER", "native")
	v.SetDefault("LIBREOFFICE_PATH", "")
	v.SetDefault("CONVERSION_TIMEOUT", "60s")
	v.SetDefault("DOCUMENT_DISPOSITION", "inline")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_MINUTES", 60)
	v.SetDefault("JWT_REFRESH_HOURS", 24*7)
	v.SetDefault("AUTH_COOKIE_SECURE", true)
	v.SetDefault("AUTH_COOKIE_HTTP_ONLY", true)
	v.SetDefault("AUTH_COOKIE_SAMESITE", "None")
	v.SetDefault("AUTH_COOKIE_PATH", "/")
	v.SetDefault("AUTH_COOKIE_DOMAIN", "")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("PASSWORD_RESET_TTL", "10m")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FACULTY_CACHE_TTL", "10m")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMTP_SKIP_TLS_VERIFY", false)
	v.SetDefault("SWEEPER_SCHEDULE", "*/15 * * * *")
	v.SetDefault("SWEEPER_STALE_AFTER", "30m")
	v.SetDefault("LOG_FILE", filepath.Join("logs", "rkive-api.log"))
	v.SetDefault("LOG_ACCESS_TOKEN", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
}

// Defaults returns the settings used when no environment is present.
func Defaults() *Settings {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// Load reads .env (if present) and the process environment into Current.
func Load() *Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	Current = fromViper(v)
	if Current.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET is empty; tokens are signed with an empty key")
	}
	return Current
}

func fromViper(v *viper.Viper) *Settings {
	return &Settings{
		Environment: strings.ToLower(v.GetString("ENVIRONMENT")),
		ServerPort:  v.GetString("SERVER_PORT"),
		GinMode:     v.GetString("GIN_MODE"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBDatabase: v.GetString("DB_DATABASE"),
		DBUsername: v.GetString("DB_USERNAME"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBDSN:      v.GetString("DB_DSN"),
		DebugSQL:   v.GetBool("DEBUG_SQL"),

		MediaRoot:   v.GetString("MEDIA_ROOT"),
		MediaURL:    ensureTrailingSlash(v.GetString("MEDIA_URL")),
		TemplateDir: v.GetString("TEMPLATE_DIR"),

		Converter:           strings.ToLower(v.GetString("CONVERTER")),
		LibreOfficePath:     v.GetString("LIBREOFFICE_PATH"),
		ConversionTimeout:   v.GetDuration("CONVERSION_TIMEOUT"),
		DocumentDisposition: normalizeDisposition(v.GetString("DOCUMENT_DISPOSITION")),

		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  time.Duration(v.GetInt("JWT_ACCESS_MINUTES")) * time.Minute,
		RefreshTokenTTL: time.Duration(v.GetInt("JWT_REFRESH_HOURS")) * time.Hour,

		CookieSecure:   v.GetBool("AUTH_COOKIE_SECURE"),
		CookieHTTPOnly: v.GetBool("AUTH_COOKIE_HTTP_ONLY"),
		CookieSameSite: v.GetString("AUTH_COOKIE_SAMESITE"),
		CookiePath:     v.GetString("AUTH_COOKIE_PATH"),
		CookieDomain:   v.GetString("AUTH_COOKIE_DOMAIN"),

		GoogleClientID: v.GetString("GOOGLE_CLIENT_ID"),

		AppBaseURL:       strings.TrimSpace(v.GetString("APP_BASE_URL")),
		PasswordResetTTL: v.GetDuration("PASSWORD_RESET_TTL"),

		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		FacultyCacheTTL: v.GetDuration("FACULTY_CACHE_TTL"),

		SMTPHost:          v.GetString("SMTP_HOST"),
		SMTPPort:          v.GetInt("SMTP_PORT"),
		SMTPUser:          v.GetString("SMTP_USER"),
		SMTPPass:          v.GetString("SMTP_PASS"),
		SMTPFrom:          v.GetString("SMTP_FROM"),
		SMTPSkipTLSVerify: v.GetBool("SMTP_SKIP_TLS_VERIFY"),

		SweeperSchedule:   v.GetString("SWEEPER_SCHEDULE"),
		SweeperStaleAfter: v.GetDuration("SWEEPER_STALE_AFTER"),

		LogFile:        v.GetString("LOG_FILE"),
		LogAccessToken: v.GetString("LOG_ACCESS_TOKEN"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
	}
}

// IsProduction reports whether ENVIRONMENT=production.
func (s *Settings) IsProduction() bool {
	return s.Environment == "production"
}

// TemplatePath returns the canonical template file for a template name.
func (s *Settings) TemplatePath(name string) string {
	return filepath.Join(s.TemplateDir, name)
}

func ensureTrailingSlash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "/"
	}
	if !strings.HasSuffix(value, "/") {
		value += "/"
	}
	return value
}

func normalizeDisposition(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), "attachment") {
		return "attachment"
	}
	return "inline"
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
