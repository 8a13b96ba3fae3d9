package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Booking BookingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type RedisConfig struct {
	Addr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password    string        `envconfig:"REDIS_PASSWORD"`
	DB          int           `envconfig:"REDIS_DB" default:"0"`
	TLS         bool          `envconfig:"REDIS_TLS" default:"false"`
	DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"2s"`
}

// Empty Brokers disables event publication.
type KafkaConfig struct {
	Brokers      []string      `envconfig:"KAFKA_BROKERS"`
	Topic        string        `envconfig:"KAFKA_BOOKING_TOPIC" default:"booking-events"`
	RequireAcks  int           `envconfig:"KAFKA_REQUIRE_ACKS" default:"-1"`
	BatchTimeout time.Duration `envconfig:"KAFKA_BATCH_TIMEOUT" default:"50ms"`
	MaxAttempts  int           `envconfig:"KAFKA_MAX_ATTEMPTS" default:"3"`

	// Async hands messages to the writer's batcher; delivery errors surface in the completion log.
	Async          bool          `envconfig:"KAFKA_ASYNC" default:"true"`
	PublishTimeout time.Duration `envconfig:"KAFKA_PUBLISH_TIMEOUT" default:"1s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type BookingConfig struct {
	MeetingDuration time.Duration `envconfig:"BOOKING_MEETING_DURATION" default:"30m"`
	MaxLookahead    time.Duration `envconfig:"BOOKING_MAX_LOOKAHEAD" default:"72h"`
	LockTTL         time.Duration `envconfig:"BOOKING_LOCK_TTL" default:"90s"`
	TimeZone        string        `envconfig:"BOOKING_TIMEZONE" default:"UTC"`
	RequestTimeout  time.Duration `envconfig:"BOOKING_REQUEST_TIMEOUT" default:"20s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// Validate checks settings that envconfig cannot express with tags.
func (c Config) Validate() error {
	b := c.Booking
	if b.MeetingDuration < time.Minute || b.MeetingDuration%time.Minute != 0 {
		return fmt.Errorf("BOOKING_MEETING_DURATION must be a positive whole number of minutes, got %s", b.MeetingDuration)
	}
	if b.MeetingDuration > 24*time.Hour {
		return fmt.Errorf("BOOKING_MEETING_DURATION must not exceed 24h, got %s", b.MeetingDuration)
	}
	if b.MaxLookahead <= 0 {
		return fmt.Errorf("BOOKING_MAX_LOOKAHEAD must be positive, got %s", b.MaxLookahead)
	}
	if b.LockTTL <= 0 {
		return fmt.Errorf("BOOKING_LOCK_TTL must be positive, got %s", b.LockTTL)
	}
	// a request outliving its locks could release keys another request now holds
	if b.RequestTimeout <= 0 || b.RequestTimeout >= b.LockTTL {
		return fmt.Errorf("BOOKING_REQUEST_TIMEOUT (%s) must be positive and shorter than BOOKING_LOCK_TTL (%s)", b.RequestTimeout, b.LockTTL)
	}
	if _, err := b.Location(); err != nil {
		return fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", b.TimeZone, err)
	}
	return nil
}

func LoadConfig() (Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 20,
		},
		Redis: RedisConfig{
			Addr:        "localhost:16379",
			DialTimeout: 2 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:          "booking-events",
			Async:          true,
			PublishTimeout: time.Second,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Booking: BookingConfig{
			MeetingDuration: 30 * time.Minute,
			MaxLookahead:    72 * time.Hour,
			LockTTL:         90 * time.Second,
			TimeZone:        "UTC",
			RequestTimeout:  20 * time.Second,
		},
	}
}
