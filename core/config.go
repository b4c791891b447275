package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		AppName  string
		Build    string

		SecretKey        string
		DefaultFromEmail mail.Address
		ReceiptEmail     string // office copy of payment receipts; disabled if empty
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
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

	StorageConfig struct {
		// Backend selects the ledger/schedule storage: "flatfile" (default),
		// "database" or "dummy".
		Backend      string
		DataDir      string
		LedgerFile   string
		ScheduleFile string
		UsersFile    string
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Malipo")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w#tp)f+a$y9mzucj05_e&dz(h2(h!x)#*c2#yg4h^$cegm2emy")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("receiptEmail", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("serverHost", "0.0.0.0:8000")
	conf.SetDefault("serverDebugHost", "0.0.0.0:4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbName", "malipo")
	conf.SetDefault("dbUser", "malipo")
	conf.SetDefault("dbPassword", "")
	conf.SetDefault("dbAdminUser", "")
	conf.SetDefault("dbAdminPassword", "")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbDisableTLS", true)
	conf.SetDefault("storageBackend", "flatfile")
	conf.SetDefault("storageDataDir", "data")
	conf.SetDefault("storageLedgerFile", "fees_data.csv")
	conf.SetDefault("storageScheduleFile", "student_fees.json")
	conf.SetDefault("storageUsersFile", "users.json")

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
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
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		SecretKey:        conf.GetString("secretKey"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		ReceiptEmail:     conf.GetString("receiptEmail"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("serverHost"),
			DebugHost:          conf.GetString("serverDebugHost"),
			ShutdownTimeout:    conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
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
		Storage: StorageConfig{
			Backend:      conf.GetString("storageBackend"),
			DataDir:      conf.GetString("storageDataDir"),
			LedgerFile:   conf.GetString("storageLedgerFile"),
			ScheduleFile: conf.GetString("storageScheduleFile"),
			UsersFile:    conf.GetString("storageUsersFile"),
		},
	}
}
