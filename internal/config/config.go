package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string
	MQTTClientIDLocalizer string
	MQTTClientIDSerial    string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string

	// Topics
	TopicPoseFused  string
	TopicTrialState string

	// EvAAL competition server
	EvaalServer    string
	EvaalTrial     string
	PollInterval   int     // milliseconds between nextdata requests
	InitialHorizon float64 // seconds of data requested before the first estimate
	HTTPTimeout    int     // milliseconds
	EstimatesCSV   string
	LogOutput      string // where to save the server log; empty skips it

	// Serial sensor line source
	SerialPort          string
	SerialBaudRate      int
	SerialBatchInterval int // milliseconds

	// Replay
	ReplayFile      string // empty replays a synthetic walk
	ReplayHorizon   float64
	ReplayOutputCSV string
	MockDuration    float64 // seconds of synthetic walk

	// Web Server
	WebServerPort int

	// Fusion
	ReferenceObjectID  string
	PDRWindowSamples   int
	PDRWindowSec       float64
	PDRAccThreshold    float64
	PDRDefaultVelocity float64
	YawMatchTolerance  float64
	HistoryCapacity    int

	// Logging: debug, info, warn or error
	LogLevel string
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	return &Config{
		MQTTClientIDLocalizer: "indoor-localizer",
		MQTTClientIDSerial:    "indoor-serial-estimator",
		MQTTClientIDConsole:   "indoor-console-subscriber",
		MQTTClientIDWeb:       "indoor-web-subscriber",

		TopicPoseFused:  "localizer/pose/fused",
		TopicTrialState: "localizer/trial/state",

		EvaalServer:    "http://127.0.0.1:5000/evaalapi/",
		EvaalTrial:     "onlinedemo",
		PollInterval:   500,
		InitialHorizon: 0.5,
		HTTPTimeout:    10000,
		EstimatesCSV:   "estimates.csv",

		SerialBaudRate:      115200,
		SerialBatchInterval: 500,

		ReplayHorizon:   0.5,
		ReplayOutputCSV: "replay_estimates.csv",
		MockDuration:    30,

		WebServerPort: 8080,

		ReferenceObjectID:  "base_link",
		PDRWindowSamples:   20,
		PDRWindowSec:       1.0,
		PDRAccThreshold:    0.1,
		PDRDefaultVelocity: 0.7,
		YawMatchTolerance:  0.02,
		HistoryCapacity:    4096,

		LogLevel: "info",
	}
}

// Load reads the configuration file and returns a Config struct.
// Files ending in .yaml or .yml are read as a flat YAML mapping of the
// same keys; anything else is KEY=VALUE lines.
func Load(configPath string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return loadYAML(configPath)
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAML(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yaml config: %w", err)
	}

	cfg := Default()
	for key, v := range raw {
		value := ""
		if v != nil {
			value = strings.TrimSpace(fmt.Sprint(v))
		}
		if err := cfg.setValue(strings.ToUpper(key), value); err != nil {
			return nil, fmt.Errorf("yaml config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_LOCALIZER":
		c.MQTTClientIDLocalizer = value
	case "MQTT_CLIENT_ID_SERIAL":
		c.MQTTClientIDSerial = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_POSE_FUSED":
		c.TopicPoseFused = value
	case "TOPIC_TRIAL_STATE":
		c.TopicTrialState = value

	// EvAAL
	case "EVAAL_SERVER":
		c.EvaalServer = value
	case "EVAAL_TRIAL":
		c.EvaalTrial = value
	case "POLL_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL %q: %w", value, err)
		}
		if interval < 0 {
			return fmt.Errorf("POLL_INTERVAL must be >= 0, got %d", interval)
		}
		c.PollInterval = interval
	case "INITIAL_HORIZON":
		h, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid INITIAL_HORIZON %q: %w", value, err)
		}
		c.InitialHorizon = h
	case "HTTP_TIMEOUT":
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", value, err)
		}
		c.HTTPTimeout = timeout
	case "ESTIMATES_CSV":
		c.EstimatesCSV = value
	case "LOG_OUTPUT":
		c.LogOutput = value

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate
	case "SERIAL_BATCH_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BATCH_INTERVAL %q: %w", value, err)
		}
		c.SerialBatchInterval = interval

	// Replay
	case "REPLAY_FILE":
		c.ReplayFile = value
	case "REPLAY_HORIZON":
		h, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid REPLAY_HORIZON %q: %w", value, err)
		}
		c.ReplayHorizon = h
	case "REPLAY_OUTPUT_CSV":
		c.ReplayOutputCSV = value
	case "MOCK_DURATION":
		d, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MOCK_DURATION %q: %w", value, err)
		}
		c.MockDuration = d

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port

	// Fusion
	case "REFERENCE_OBJECT_ID":
		c.ReferenceObjectID = value
	case "PDR_WINDOW_SAMPLES":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PDR_WINDOW_SAMPLES %q: %w", value, err)
		}
		c.PDRWindowSamples = n
	case "PDR_WINDOW_SEC":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PDR_WINDOW_SEC %q: %w", value, err)
		}
		c.PDRWindowSec = f
	case "PDR_ACC_THRESHOLD":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PDR_ACC_THRESHOLD %q: %w", value, err)
		}
		c.PDRAccThreshold = f
	case "PDR_DEFAULT_VELOCITY":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PDR_DEFAULT_VELOCITY %q: %w", value, err)
		}
		c.PDRDefaultVelocity = f
	case "YAW_MATCH_TOLERANCE":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid YAW_MATCH_TOLERANCE %q: %w", value, err)
		}
		c.YawMatchTolerance = f
	case "HISTORY_CAPACITY":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid HISTORY_CAPACITY %q: %w", value, err)
		}
		c.HistoryCapacity = n

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.TopicPoseFused == "" {
		return fmt.Errorf("TOPIC_POSE_FUSED is required")
	}
	if c.ReferenceObjectID == "" {
		return fmt.Errorf("REFERENCE_OBJECT_ID is required")
	}
	if c.InitialHorizon <= 0 {
		return fmt.Errorf("INITIAL_HORIZON must be > 0, got %g", c.InitialHorizon)
	}
	if c.ReplayHorizon <= 0 {
		return fmt.Errorf("REPLAY_HORIZON must be > 0, got %g", c.ReplayHorizon)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0, got %d", c.HTTPTimeout)
	}
	if c.SerialBatchInterval <= 0 {
		return fmt.Errorf("SERIAL_BATCH_INTERVAL must be > 0, got %d", c.SerialBatchInterval)
	}
	if c.PDRWindowSamples < 1 {
		return fmt.Errorf("PDR_WINDOW_SAMPLES must be >= 1, got %d", c.PDRWindowSamples)
	}
	if c.PDRWindowSec <= 0 {
		return fmt.Errorf("PDR_WINDOW_SEC must be > 0, got %g", c.PDRWindowSec)
	}
	if c.YawMatchTolerance <= 0 {
		return fmt.Errorf("YAW_MATCH_TOLERANCE must be > 0, got %g", c.YawMatchTolerance)
	}
	if c.HistoryCapacity < c.PDRWindowSamples {
		return fmt.Errorf("HISTORY_CAPACITY must be >= PDR_WINDOW_SAMPLES (%d), got %d", c.PDRWindowSamples, c.HistoryCapacity)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
