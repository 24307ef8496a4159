package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the backend reads.
	EnvPrefix = "SPORTYGEAR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SPORTYGEAR_DB_DSN"
	EnvDBHost = "SPORTYGEAR_DB_HOST"
	EnvDBUser = "SPORTYGEAR_DB_USER"
	EnvDBName = "SPORTYGEAR_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	MoMo          MoMoConfig
	VNPay         VNPayConfig
	SMTP          SMTPConfig
	Cloudinary    CloudinaryConfig
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
	Env          string `envconfig:"SPORTYGEAR_APP_ENV" required:"true"`
	Port         string `envconfig:"SPORTYGEAR_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"SPORTYGEAR_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"SPORTYGEAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPORTYGEAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SPORTYGEAR_DB_DSN"`
	Driver string `envconfig:"SPORTYGEAR_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SPORTYGEAR_DB_HOST"`
	Port     int    `envconfig:"SPORTYGEAR_DB_PORT" default:"5432"`
	User     string `envconfig:"SPORTYGEAR_DB_USER"`
	Password string `envconfig:"SPORTYGEAR_DB_PASSWORD"`
	Name     string `envconfig:"SPORTYGEAR_DB_NAME"`
	SSLMode  string `envconfig:"SPORTYGEAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPORTYGEAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPORTYGEAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPORTYGEAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPORTYGEAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPORTYGEAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SPORTYGEAR_REDIS_ADDR"`
	Password     string        `envconfig:"SPORTYGEAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPORTYGEAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPORTYGEAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPORTYGEAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPORTYGEAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPORTYGEAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPORTYGEAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SPORTYGEAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SPORTYGEAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SPORTYGEAR_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"SPORTYGEAR_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SPORTYGEAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SPORTYGEAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SPORTYGEAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SPORTYGEAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SPORTYGEAR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SPORTYGEAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SPORTYGEAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SPORTYGEAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SPORTYGEAR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SPORTYGEAR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SPORTYGEAR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPORTYGEAR_AUTO_MIGRATE" default:"false"`
}

type MoMoConfig struct {
	PartnerCode string `envconfig:"SPORTYGEAR_MOMO_PARTNER_CODE"`
	AccessKey   string `envconfig:"SPORTYGEAR_MOMO_ACCESS_KEY"`
	SecretKey   string `envconfig:"SPORTYGEAR_MOMO_SECRET_KEY"`
	Endpoint    string `envconfig:"SPORTYGEAR_MOMO_ENDPOINT" default:"https://test-payment.momo.vn/v2/gateway/api/create"`
	RedirectURL string `envconfig:"SPORTYGEAR_MOMO_REDIRECT_URL"`
	IPNURL      string `envconfig:"SPORTYGEAR_MOMO_IPN_URL"`
}

type VNPayConfig struct {
	TmnCode    string `envconfig:"SPORTYGEAR_VNPAY_TMN_CODE"`
	HashSecret string `envconfig:"SPORTYGEAR_VNPAY_HASH_SECRET"`
	PayURL     string `envconfig:"SPORTYGEAR_VNPAY_PAY_URL" default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	ReturnURL  string `envconfig:"SPORTYGEAR_VNPAY_RETURN_URL"`
}

type SMTPConfig struct {
	Host        string `envconfig:"SPORTYGEAR_SMTP_HOST"`
	Port        int    `envconfig:"SPORTYGEAR_SMTP_PORT" default:"587"`
	Username    string `envconfig:"SPORTYGEAR_SMTP_USERNAME"`
	Password    string `envconfig:"SPORTYGEAR_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"SPORTYGEAR_SMTP_FROM_EMAIL"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.DefaultFrom != ""
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"SPORTYGEAR_CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"SPORTYGEAR_CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"SPORTYGEAR_CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"SPORTYGEAR_CLOUDINARY_FOLDER" default:"sportygear"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
