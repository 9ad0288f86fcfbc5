package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey       string        `mapstructure:"secretKey"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	AccessTokenTTL  time.Duration `mapstructure:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `mapstructure:"refreshTokenTTL"`
}

type LLMConfig struct {
	APIKey      string  `mapstructure:"apiKey"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	// RequestsPerMinute is the per-IP budget for the assistant endpoints.
	RequestsPerMinute int `mapstructure:"requestsPerMinute"`
	// MaxTripDays and MaxTripPeople bound /plan_trip input. Zero uses the defaults.
	MaxTripDays   int `mapstructure:"maxTripDays"`
	MaxTripPeople int `mapstructure:"maxTripPeople"`
}

type CacheConfig struct {
	// Backend is either "memory" or "redis".
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Redis struct {
			Host     string `mapstructure:"host"`
			Port     string `mapstructure:"port"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	JWT      JWTConfig   `mapstructure:"jwt"`
	LLM      LLMConfig   `mapstructure:"llm"`
	Cache    CacheConfig `mapstructure:"cache"`
	Telegram struct {
		Token string `mapstructure:"token"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"telegram"`
	// Admin is the bootstrap administrator account ensured at startup.
	Admin struct {
		Email    string `mapstructure:"email"`
		Password string `mapstructure:"password"`
	} `mapstructure:"admin"`
	ServiceName string `mapstructure:"serviceName"`
}

// InitConfig loads config.yml from the usual locations, falling back to the
// embedded copy. Environment variables override file values, e.g.
// LLM_APIKEY overrides llm.apiKey.
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	// AutomaticEnv only applies to keys viper already knows, which is every
	// key present in config.yml. The API key is commonly exported under the
	// provider's own name, so honour that too.
	_ = v.BindEnv("llm.apiKey", "LLM_APIKEY", "GOOGLE_API_KEY", "GOOGLE_GEMINI_API_KEY")
	_ = v.BindEnv("telegram.token", "TELEGRAM_TOKEN")
	_ = v.BindEnv("jwt.secretKey", "JWT_SECRETKEY", "JWT_SECRET_KEY")
	_ = v.BindEnv("admin.password", "ADMIN_PASSWORD")

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
