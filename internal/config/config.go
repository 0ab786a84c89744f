package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"refcontest/lib/validate"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
)

type Listen struct {
	BindIp   string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env-default:"8080"`
	APIToken string `yaml:"api_token" env:"API_TOKEN" env-default:""`
	Enabled  bool   `yaml:"enabled" env-default:"true"`
}

type TelegramConfig struct {
	ApiKey  string `yaml:"api_key" env:"BOT_TOKEN" validate:"required"`
	AdminID int64  `yaml:"admin_id" env:"ADMIN_ID" validate:"required"`
	// Channel is the public channel users must join, as @name or https://t.me/name.
	Channel  string `yaml:"channel" env:"GROUP_LINK" validate:"required"`
	LogLevel string `yaml:"log_level" env-default:"error"`
}

type ContestConfig struct {
	Cap             int           `yaml:"cap" env:"MAX_PARTICIPANTS" validate:"required,min=1"`
	PollInterval    time.Duration `yaml:"poll_interval" env-default:"1h" validate:"min=1s"`
	// RetryInterval is the delay before another check after a failed poll.
	RetryInterval   time.Duration `yaml:"retry_interval" env-default:"10m" validate:"min=1s"`
	LeaderboardSize int           `yaml:"leaderboard_size" env-default:"5" validate:"min=1,max=100"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
}

type NotifyConfig struct {
	Attempts int           `yaml:"attempts" env-default:"3" validate:"min=1"`
	Delay    time.Duration `yaml:"delay" env-default:"2s"`
	// AdminDigest batches referral notices to the admin; zero sends them one by one.
	AdminDigest time.Duration `yaml:"admin_digest" env-default:"0s"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" env-default:"sqlite" validate:"oneof=sqlite mysql mongo"`
	Path   string `yaml:"path" env-default:"refcontest.db"`
}

type MySQLConfig struct {
	HostName string `yaml:"hostname" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"3306"`
	UserName string `yaml:"username" env-default:""`
	Password string `yaml:"password" env-default:""`
	Database string `yaml:"database" env-default:"refcontest"`
}

type MongoConfig struct {
	Host     string `yaml:"host" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:""`
	Password string `yaml:"password" env-default:""`
	Database string `yaml:"database" env-default:"refcontest"`
}

type RedisConfig struct {
	URL string        `yaml:"url" env:"REDIS_URL" env-default:""`
	TTL time.Duration `yaml:"ttl" env-default:"10m"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env-default:"contest-events"`
}

type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint" env:"OTEL_ENDPOINT" env-default:""`
}

type Config struct {
	Env       string          `yaml:"env" env-default:"local" validate:"oneof=local dev prod"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Contest   ContestConfig   `yaml:"contest"`
	Notify    NotifyConfig    `yaml:"notify"`
	Store     StoreConfig     `yaml:"store"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Listen    Listen          `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	once.Do(func() {
		conf, err := Load(path)
		if err != nil {
			log.Fatal(err)
		}
		instance = conf
	})
	return instance
}

// Load reads and validates the configuration without caching it.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("config: %s; %s", err, desc)
	}
	if err := validate.Struct(conf); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return conf, nil
}
