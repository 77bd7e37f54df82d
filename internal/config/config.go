package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env               string
	Port              string
	SessionSecret     string
	DatabaseURL       string
	RedisURL          string
	AssetGatewayURL   string // base URL of the asset gateway used for minting and transfers
	AssetGatewayKey   string
	StripeSecretKey   string
	AllowedOrigins    []string
	AllowCrossSiteDev bool
	HealthAdminKey    string
	TokenizeTimeout   string // e.g. "30s"; parsed by the farms handlers
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:               env,
		Port:              port,
		SessionSecret:     viper.GetString("SESSION_SECRET"),
		DatabaseURL:       dbURL,
		RedisURL:          viper.GetString("REDIS_URL"),
		AssetGatewayURL:   viper.GetString("ASSET_GATEWAY_URL"),
		AssetGatewayKey:   viper.GetString("ASSET_GATEWAY_KEY"),
		StripeSecretKey:   viper.GetString("STRIPE_SECRET_KEY"),
		AllowedOrigins:    splitOrigins(viper.GetString("ALLOWED_ORIGINS")),
		AllowCrossSiteDev: strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:    viper.GetString("HEALTH_ADMIN_KEY"),
		TokenizeTimeout:   viper.GetString("TOKENIZE_TIMEOUT"),
	}, nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
