package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppPort     string
	BaseURL     string
	FrontendURL string

	DataFile  string
	BaseFile  string
	UploadDir string
	// Extra directories Serve falls back to when the upload dir misses,
	// to tolerate differing deployment layouts.
	MediaFallback []string

	AdminPasswordHash string
	JWTSecret         string
	JWTExpiresMin     int

	OxapayMerchant string
	OxapayBaseURL  string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	LogLevel    string
	LogEncoding string
}

func Load() Config {
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "1440"))
	return Config{
		AppPort:     get("APP_PORT", "8080"),
		BaseURL:     get("APP_BASE_URL", "http://localhost:8080"),
		FrontendURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),

		DataFile:      get("DATA_FILE", "./data/data.json"),
		BaseFile:      get("BASE_FILE", "./data/data.base.json"),
		UploadDir:     get("UPLOAD_DIR", "./public/uploads"),
		MediaFallback: split(get("MEDIA_FALLBACK_DIRS", "")),

		AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),
		JWTSecret:         must("JWT_SECRET"),
		JWTExpiresMin:     expires,

		OxapayMerchant: must("OXAPAY_MERCHANT_KEY"),
		OxapayBaseURL:  get("OXAPAY_BASE_URL", "https://api.oxapay.com"),

		SMTPHost: get("SMTP_HOST", ""),
		SMTPPort: get("SMTP_PORT", "587"),
		SMTPUser: get("SMTP_USER", ""),
		SMTPPass: get("SMTP_PASS", ""),
		SMTPFrom: get("SMTP_FROM", "admin@pegasus1337.store"),

		LogLevel:    get("LOG_LEVEL", "info"),
		LogEncoding: get("LOG_ENCODING", "json"),
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

func split(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
