package confs

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"lab-server/logger"
)

type Config struct {
	HTTPAddr       string
	Rooms          []int
	RoomsFile      string
	BrokerEnabled  bool
	NatsURL        string
	NatsStream     string
	PublishTimeout time.Duration
	StoreTimeout   time.Duration
	RedisURL       string
	LogLevel       string
	Debug          bool
}

// LoadConfig loads environment variables from a .env file if present
// and builds the runtime configuration from them.
func LoadConfig() (*Config, error) {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Msg("could not load .env")
		}
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	rooms, err := parseRooms(getEnv("ROOMS", "1,2,3,4"))
	if err != nil {
		return nil, err
	}
	publishTimeout, err := getDuration("PUBLISH_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	storeTimeout, err := getDuration("STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", "0.0.0.0:3536"),
		Rooms:          rooms,
		RoomsFile:      getEnv("ROOMS_FILE", "rooms.yaml"),
		BrokerEnabled:  getBool("BROKER_ENABLED", false),
		NatsURL:        getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		NatsStream:     getEnv("NATS_STREAM", "LAB"),
		PublishTimeout: publishTimeout,
		StoreTimeout:   storeTimeout,
		RedisURL:       os.Getenv("REDIS_URL"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Debug:          getBool("DEBUG", false),
	}, nil
}

func parseRooms(raw string) ([]int, error) {
	seen := make(map[int]bool)
	var rooms []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid room number %q in ROOMS", part)
		}
		if !seen[n] {
			seen[n] = true
			rooms = append(rooms, n)
		}
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("ROOMS must name at least one room")
	}
	sort.Ints(rooms)
	return rooms, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
