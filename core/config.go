package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Engine        string
	Name          string
	User          string
	Password      string
	AdminUser     string
	AdminPassword string
	Host          string
	Port          string
	DisableTLS    bool
}

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

type ServerConfig struct {
	Host            string
	Port            string
	DebugHost       string
	ShutdownTimeout time.Duration
}

func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	AppName  string
	Build    string

	SecretKey                 string
	JWTExpirationDelta        time.Duration
	JWTRefreshExpirationDelta time.Duration
	PasswordResetTimeoutDelta time.Duration

	// TwoFASecret is the shared TOTP secret. Empty until the first
	// user completes the 2FA setup flow.
	TwoFASecret string
	// ICSecretKey is the base64 Fernet key used to encrypt IC numbers at rest.
	ICSecretKey string

	UploadDir      string
	ReportDir      string
	ScoreBatchSize int

	RollbarToken string

	Server   ServerConfig
	Database DatabaseConfig

	// DotEnvPath is the .env file settings were loaded from, if any.
	// Generated secrets (e.g. the TOTP secret) are persisted back to it.
	DotEnvPath string
}

// NewConfig loads settings from defaults, an optional config/.env.<env> file
// and the environment (env vars prefixed with the current ENV take precedence).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "SoC-SMS")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "f8u+t$20m%a(bkq5=yj^_x&3r!vc#e7)whz9s4d-lp6n@go1i5")
	conf.SetDefault("jwtExpirationDelta", 8*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("twoFASecret", "")
	conf.SetDefault("icSecretKey", "")
	conf.SetDefault("uploadDir", filepath.Join(Getwd(), "uploads"))
	conf.SetDefault("reportDir", filepath.Join(Getwd(), "reports"))
	conf.SetDefault("scoreBatchSize", 200)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("serverHost", "")
	conf.SetDefault("serverPort", "8000")
	conf.SetDefault("serverDebugHost", "localhost:6060")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbName", "soc_sms")
	conf.SetDefault("dbUser", "soc_sms")
	conf.SetDefault("dbPassword", "")
	conf.SetDefault("dbAdminUser", "postgres")
	conf.SetDefault("dbAdminPassword", "")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbDisableTLS", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	testMode := false
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	} else {
		dotEnvPath = ""
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:                     conf.GetBool("debug"),
		TestMode:                  testMode || conf.GetBool("testMode"),
		Env:                       env,
		AppName:                   conf.GetString("appName"),
		Build:                     conf.GetString("build"),
		SecretKey:                 conf.GetString("secretKey"),
		JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
		JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		TwoFASecret:               conf.GetString("twoFASecret"),
		ICSecretKey:               conf.GetString("icSecretKey"),
		UploadDir:                 conf.GetString("uploadDir"),
		ReportDir:                 conf.GetString("reportDir"),
		ScoreBatchSize:            conf.GetInt("scoreBatchSize"),
		RollbarToken:              conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			Port:            conf.GetString("serverPort"),
			DebugHost:       conf.GetString("serverDebugHost"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Name:          conf.GetString("dbName"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		DotEnvPath: dotEnvPath,
	}
}

// SaveTwoFASecret persists the shared TOTP secret to the loaded .env file
// so it survives restarts.
func (c *Config) SaveTwoFASecret(secret string) error {
	c.TwoFASecret = secret
	if c.DotEnvPath == "" {
		c.DotEnvPath = filepath.Join(Getwd(), "config", ".env."+strings.ToLower(c.Env))
		if err := os.MkdirAll(filepath.Dir(c.DotEnvPath), 0o755); err != nil {
			return err
		}
	}
	env, err := godotenv.Read(c.DotEnvPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		env = make(map[string]string)
	}
	env[c.Env+"_TWOFASECRET"] = secret
	return godotenv.Write(env, c.DotEnvPath)
}
