package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	Chain ChainConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hydrochain"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ChainConfig holds the settlement ledger settings. Settlement is attempted
// only when RPCURL, SigningKey and ContractAddress are all present; otherwise
// every mint is simulated locally.
type ChainConfig struct {
	RPCURL          string        `env:"CHAIN_RPC_URL"`
	SigningKey      string        `env:"CHAIN_PRIVATE_KEY"`
	ContractAddress string        `env:"CHAIN_CONTRACT_ADDRESS"`
	CallTimeout     time.Duration `env:"CHAIN_CALL_TIMEOUT, default=5s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
