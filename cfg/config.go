package cfg

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type GitHubConfig struct {
	URL          string
	ClientID     string
	ClientSecret string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type DatabaseConfig struct {
	URL string
}

type ObservabilityConfig struct {
	OTLPEndpoint string
	ServiceName  string
	Environment  string
}

type Config struct {
	AppEnv            string
	HTTPAddr          string
	GitHub            GitHubConfig
	Redis             RedisConfig
	Database          DatabaseConfig
	Observability     ObservabilityConfig
	SessionTTLMinutes int
	IDGenNode         int64
}

func Load() (*Config, error) {
	var errs []error

	err := godotenv.Load()
	if err != nil {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	appEnv := mustEnv("APP_ENV", &errs)
	httpAddr := mustEnv("HTTP_ADDR", &errs)

	githubURL := mustEnv("GITHUB_URL", &errs)
	githubClientID := mustEnv("GITHUB_CLIENT_ID", &errs)
	githubClientSecret := mustEnv("GITHUB_CLIENT_SECRET", &errs)

	redisHost := mustEnv("REDIS_HOST", &errs)
	redisPort := mustEnv("REDIS_PORT", &errs)
	redisPassword := mustEnv("REDIS_PASSWORD", &errs)

	databaseURL := mustEnv("DATABASE_URL", &errs)

	otlpEndpoint := mustEnv("OTLP_ENDPOINT", &errs)
	serviceName := mustEnv("SERVICE_NAME", &errs)

	sessionTTLMinutes := mustEnv("SESSION_TTL_MINUTES", &errs)
	sessionTTLMinutesInt, err := strconv.Atoi(sessionTTLMinutes)
	if err != nil {
		errs = append(errs, errors.New("conversion failed env: "+"SESSION_TTL_MINUTES"))
	}

	idgenNode := mustEnv("IDGEN_NODE_ID", &errs)
	idgenNodeInt, err := strconv.ParseInt(idgenNode, 10, 64)
	if err != nil {
		errs = append(errs, errors.New("conversion failed env: "+"IDGEN_NODE_ID"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:   appEnv,
		HTTPAddr: httpAddr,
		GitHub: GitHubConfig{
			URL:          githubURL,
			ClientID:     githubClientID,
			ClientSecret: githubClientSecret,
		},
		Redis: RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
		},
		Database: DatabaseConfig{
			URL: databaseURL,
		},
		Observability: ObservabilityConfig{
			OTLPEndpoint: otlpEndpoint,
			ServiceName:  serviceName,
			Environment:  appEnv,
		},
		SessionTTLMinutes: sessionTTLMinutesInt,
		IDGenNode:         idgenNodeInt,
	}, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}
