package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration, loaded from the environment
// with an optional .env file for local development.
type Config struct {
	HTTP  HTTPConfig  `envconfig:"HTTP"`
	WS    WSConfig    `envconfig:"WS"`
	Mongo MongoConfig `envconfig:"MONGO"`
	Redis RedisConfig `envconfig:"REDIS"`
	JWT   JWTConfig   `envconfig:"JWT"`
	Log   LogConfig   `envconfig:"LOG"`
}

type HTTPConfig struct {
	Addr string `envconfig:"ADDR" default:":5000"`
}

type WSConfig struct {
	SendQueueSize  int           `envconfig:"SEND_QUEUE_SIZE" default:"64"`
	FanoutWorkers  int           `envconfig:"FANOUT_WORKERS" default:"4"`
	FanoutQueue    int           `envconfig:"FANOUT_QUEUE" default:"256"`
	PingPeriod     time.Duration `envconfig:"PING_PERIOD" default:"54s"`
	WriteWait      time.Duration `envconfig:"WRITE_WAIT" default:"10s"`
	MaxMessageSize int64         `envconfig:"MAX_MESSAGE_SIZE" default:"65536"`
}

type MongoConfig struct {
	URI         string   `envconfig:"URI"`
	Address     []string `envconfig:"ADDRESS" default:"127.0.0.1:27017"`
	Database    string   `envconfig:"DATABASE" default:"marketgram"`
	Username    string   `envconfig:"USERNAME"`
	Password    string   `envconfig:"PASSWORD"`
	AuthSource  string   `envconfig:"AUTH_SOURCE" default:"admin"`
	MaxPoolSize int      `envconfig:"MAX_POOL_SIZE" default:"100"`
}

// RedisConfig is optional: an empty Addr disables the participants cache.
type RedisConfig struct {
	Addr     string        `envconfig:"ADDR"`
	Password string        `envconfig:"PASSWORD"`
	DB       int           `envconfig:"DB" default:"0"`
	PoolSize int           `envconfig:"POOL_SIZE" default:"10"`
	TTL      time.Duration `envconfig:"TTL" default:"5m"`
}

type JWTConfig struct {
	Secret string `envconfig:"SECRET" required:"true"`
	Alg    string `envconfig:"ALG" default:"HS256"`
}

type LogConfig struct {
	Level string `envconfig:"LEVEL" default:"info"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("marketgram", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
