package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel int     `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP    `envPrefix:"HTTP_"`
	Store    Store   `envPrefix:"STORE_"`
	JWT      JWT     `envPrefix:"JWT_"`
	Mail     Mail    `envPrefix:"SENDGRID_"`
	Storage  Storage `envPrefix:"STORAGE_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port               string `env:"PORT" envDefault:"8080"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
	BaseURL            string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	CookieName         string `env:"COOKIE_NAME" envDefault:"magiclink_session"`
	PagesDir           string `env:"PAGES_DIR" envDefault:"web"`
}

// Store contains user store parameters. The seed user is installed when the
// backing file is missing or unreadable.
type Store struct {
	FilePath     string `env:"FILE_PATH" envDefault:"users.json"`
	SeedEmail    string `env:"SEED_EMAIL" envDefault:"admin@example.com"`
	SeedUsername string `env:"SEED_USERNAME" envDefault:"Admin"`
}

// JWT contains token signing parameters.
type JWT struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	TTL    time.Duration `env:"TTL" envDefault:"20m"`
}

// Mail contains email delivery parameters.
type Mail struct {
	APIKey       string `env:"API_KEY"`
	SenderEmail  string `env:"SENDER_EMAIL" envDefault:"no-reply@example.com"`
	SenderName   string `env:"SENDER_NAME" envDefault:"Magic Link"`
	TemplateFile string `env:"TEMPLATE_FILE" envDefault:"web/magic_link_email.html"`
}

// Storage contains avatar/file storage parameters. Backend selects between
// the local disk client and MinIO.
type Storage struct {
	Backend   string `env:"BACKEND" envDefault:"disk"`
	RootDir   string `env:"ROOT_DIR" envDefault:"web/static"`
	Endpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET_NAME" envDefault:"magiclink-files"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables, reading a local
// .env file first when one is present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
