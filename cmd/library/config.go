package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/library/internal/logger"
)

const (
	defaultListenAddr       = "localhost:8000"
	defaultLoggingLevel     = logger.LevelInfo
	defaultEnvironment      = logger.EnvProduction
	defaultAccessTTLMinutes = 15
	defaultRefreshTTLDays   = 14
	defaultBcryptCost       = bcrypt.DefaultCost
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the library service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key to sign JWT tokens with
	SecretKey string

	// Environment: development or production
	Environment string

	// Token lifetimes
	AccessTTLMinutes int
	RefreshTTLDays   int

	// Password hashing work factor
	BcryptCost int

	// Admin account created on start if both are set
	AdminEmail    string
	AdminPassword string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:         defaultLoggingLevel,
		ListenAddr:       defaultListenAddr,
		Environment:      defaultEnvironment,
		AccessTTLMinutes: defaultAccessTTLMinutes,
		RefreshTTLDays:   defaultRefreshTTLDays,
		BcryptCost:       defaultBcryptCost,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":        setString(&c.ListenAddr),
		"DATABASE_URI":       setString(&c.DatabaseDSN),
		"SECRET_KEY":         setString(&c.SecretKey),
		"LOG_LEVEL":          setString(&c.LogLevel),
		"ENVIRONMENT":        setString(&c.Environment),
		"ACCESS_TTL_MINUTES": setInt(&c.AccessTTLMinutes),
		"REFRESH_TTL_DAYS":   setInt(&c.RefreshTTLDays),
		"BCRYPT_COST":        setInt(&c.BcryptCost),
		"ADMIN_EMAIL":        setString(&c.AdminEmail),
		"ADMIN_PASSWORD":     setString(&c.AdminPassword),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("library", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (development, production)")
	fs.IntVar(&c.AccessTTLMinutes, "access-ttl", c.AccessTTLMinutes, "Access token lifetime in minutes")
	fs.IntVar(&c.RefreshTTLDays, "refresh-ttl", c.RefreshTTLDays, "Refresh token lifetime in days")
	fs.IntVar(&c.BcryptCost, "bcrypt-cost", c.BcryptCost, "Password hashing cost")

	return fs.Parse(args)
}

func (c *Config) Validate() error {
	switch {
	case c.SecretKey == "":
		return errors.New("secret key is required")
	case c.DatabaseDSN == "":
		return errors.New("database dsn is required")
	case c.AccessTTLMinutes < 1:
		return errors.New("access ttl must be positive")
	case c.RefreshTTLDays < 1:
		return errors.New("refresh ttl must be positive")
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("bcrypt cost must be in [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	case (c.AdminEmail == "") != (c.AdminPassword == ""):
		return errors.New("admin email and password must be set together")
	}
	return nil
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}
