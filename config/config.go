package config

type AppConfig struct {
	APIPort   string `env:"PORT" envDefault:"11333"`
	APIKey    string `env:"API_KEY,required"`
	ExportDir string `env:"EXPORT_DIR" envDefault:"exports"`
	RedisURL  string `env:"REDIS_URL"`
}

type TenderstackDatabaseConfig struct {
	Host            string `env:"TENDERSTACK_POSTGRES_HOST,required"`
	Port            string `env:"TENDERSTACK_POSTGRES_PORT,required"`
	User            string `env:"TENDERSTACK_POSTGRES_USER,required"`
	DBName          string `env:"TENDERSTACK_POSTGRES_DB_NAME,required"`
	Password        string `env:"TENDERSTACK_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"TENDERSTACK_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"TENDERSTACK_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"TENDERSTACK_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"TENDERSTACK_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"TENDERSTACK_POSTGRES_SSL_MODE" envDefault:"require"`
}

type GeminiConfig struct {
	Url    string `env:"GEMINI_URL" envDefault:"https://generativelanguage.googleapis.com"`
	ApiKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

type GoogleSheetsConfig struct {
	SpreadsheetID string `env:"GOOGLE_SHEET_ID"`
	SheetName     string `env:"GOOGLE_SHEET_NAME" envDefault:"filtered rfps"`
	// ServiceAccountJSON is the raw service-account credential blob.
	ServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
}

type R2StorageConfig struct {
	AccountID             string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID           string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID"`
	AccessKeySecret       string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET"`
	EmailAttachmentBucket string `env:"BUCKET_NAME_EMAIL_ATTACHMENT" envDefault:"attachments"`
	// CDNDomain is the public hostname serving the bucket (custom domain or r2.dev).
	// When set, exported rows carry resolvable attachment URLs instead of raw keys.
	CDNDomain string `env:"CLOUDFLARE_R2_CDN_DOMAIN"`
}

// Enabled reports whether object storage credentials were supplied. Attachment
// upload is optional; without it only attachment metadata is kept.
func (c *R2StorageConfig) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != ""
}
