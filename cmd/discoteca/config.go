package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/discoteca/internal/db"
	"github.com/nkiryanov/discoteca/internal/logger"
	"github.com/nkiryanov/discoteca/internal/service/disco"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultAccessTTL    = 15 * time.Minute
	defaultRefreshTTL   = 7 * 24 * time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Environment: 'dev' logs text, 'prod' logs json
	Environment string

	// Address on which the discoteca service will be run
	ListenAddr string

	// Database to connect to. Built from DB_* parts if not set explicitly
	DatabaseDSN string
	Database    db.Params

	// Distinct secrets for access and refresh tokens
	AccessSecret  string
	RefreshSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Refresh cookie is sent over TLS only. Must be true in production
	CookieSecure bool

	// Issue new refresh token on every refresh
	RefreshRotate bool

	// S3 compatible storage for disco covers. Image upload is disabled if endpoint is empty
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3PublicURL   string
	ImageMaxBytes int64
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		Environment:   defaultEnvironment,
		ListenAddr:    defaultListenAddr,
		AccessTTL:     defaultAccessTTL,
		RefreshTTL:    defaultRefreshTTL,
		ImageMaxBytes: disco.DefaultImageMaxBytes,
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
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := ParseTTL(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}
	setInt := func(o *int64) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			*o = n
			return nil
		}
	}

	// PORT is listen on all interfaces, RUN_ADDRESS is more specific and wins
	if port := getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":         setString(&c.ListenAddr),
		"DATABASE_URI":        setString(&c.DatabaseDSN),
		"DB_HOST":             setString(&c.Database.Host),
		"DB_PORT":             setString(&c.Database.Port),
		"DB_DATABASE":         setString(&c.Database.Database),
		"DB_USER":             setString(&c.Database.User),
		"DB_PASSWORD":         setString(&c.Database.Password),
		"JWT_ACCESS_SECRET":   setString(&c.AccessSecret),
		"JWT_REFRESH_SECRET":  setString(&c.RefreshSecret),
		"JWT_ACCESS_EXPIRES":  setDuration(&c.AccessTTL),
		"JWT_REFRESH_EXPIRES": setDuration(&c.RefreshTTL),
		"COOKIE_SECURE":       setBool(&c.CookieSecure),
		"REFRESH_ROTATE":      setBool(&c.RefreshRotate),
		"LOG_LEVEL":           setString(&c.LogLevel),
		"ENVIRONMENT":         setString(&c.Environment),
		"S3_ENDPOINT":         setString(&c.S3Endpoint),
		"S3_ACCESS_KEY":       setString(&c.S3AccessKey),
		"S3_SECRET_KEY":       setString(&c.S3SecretKey),
		"S3_BUCKET":           setString(&c.S3Bucket),
		"S3_PUBLIC_URL":       setString(&c.S3PublicURL),
		"IMAGE_MAX_BYTES":     setInt(&c.ImageMaxBytes),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("discoteca", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Access token secret")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Refresh token secret")
	fs.Var((*ttlValue)(&c.AccessTTL), "access-ttl", "Access token lifetime (15m, 900, 7d)")
	fs.Var((*ttlValue)(&c.RefreshTTL), "refresh-ttl", "Refresh token lifetime (15m, 900, 7d)")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", c.CookieSecure, "Send refresh cookie over TLS only")
	fs.BoolVar(&c.RefreshRotate, "refresh-rotate", c.RefreshRotate, "Issue new refresh token on every refresh")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.S3Endpoint, "s3-endpoint", c.S3Endpoint, "S3 endpoint for disco images")
	fs.StringVar(&c.S3Bucket, "s3-bucket", c.S3Bucket, "S3 bucket for disco images")
	fs.Int64Var(&c.ImageMaxBytes, "image-max-bytes", c.ImageMaxBytes, "Max size of uploaded image")

	return fs.Parse(args)
}

// DSN explicitly set or built from DB_* parts
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return c.Database.DSN()
}

func (c *Config) Validate() error {
	var errs []error

	if c.DSN() == "" {
		errs = append(errs, errors.New("database is not configured"))
	}
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		errs = append(errs, errors.New("access and refresh secrets must be set"))
	} else if c.AccessSecret == c.RefreshSecret {
		errs = append(errs, errors.New("access and refresh secrets must differ"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.S3Endpoint != "" && c.S3Bucket == "" {
		errs = append(errs, errors.New("s3 bucket must be set with s3 endpoint"))
	}

	return errors.Join(errs...)
}

// ttlValue is pflag.Value accepting same formats as ParseTTL
type ttlValue time.Duration

func (v *ttlValue) String() string { return time.Duration(*v).String() }

func (v *ttlValue) Set(s string) error {
	d, err := ParseTTL(s)
	if err != nil {
		return err
	}
	*v = ttlValue(d)
	return nil
}

func (v *ttlValue) Type() string { return "ttl" }

// ParseTTL parses Go duration ("15m", "1h30m"), days ("7d") or bare seconds ("900")
func ParseTTL(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid ttl %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q", value)
	}
	return d, nil
}
