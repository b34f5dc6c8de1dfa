package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/security-zone/internal/domain/zone"
)

// Config holds the settings shared by the zone controller and the CLI tools.
type Config struct {
	// ServerAddress is the gRPC address of the zone command surface.
	ServerAddress string `yaml:"server_addr"`
	// HTTPAddress enables the REST surface when set.
	HTTPAddress string `yaml:"http_addr"`
	// OutputsFile is the path of the JSON file holding the zone outputs.
	OutputsFile string `yaml:"outputs_file"`
	// Timeout is the duration for RPC calls made by the CLI tools.
	Timeout time.Duration `yaml:"timeout"`
	// Heartbeat is the interval between two zone evaluations.
	Heartbeat time.Duration `yaml:"heartbeat"`
	// LogLevel is the verbosity option: Normal, Verbose, a numeric debug mask or a zap level.
	LogLevel string `yaml:"log_level"`
	// Zone describes the monitored sensors and the delays.
	Zone ZoneConfig `yaml:"zone"`
	// Hub holds the sensor hub connection settings.
	Hub HubConfig `yaml:"hub"`
	// History configures the SQLite transition history.
	History HistoryConfig `yaml:"history"`
	// MQTT configures publishing of the outputs to an MQTT broker.
	MQTT MQTTConfig `yaml:"mqtt"`
	// Kafka configures the transition event stream.
	Kafka KafkaConfig `yaml:"kafka"`
	// InfluxDB configures the transition time series.
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
}

// ZoneConfig holds the raw zone parameters as written by the operator.
type ZoneConfig struct {
	// Name identifies the zone.
	Name string `yaml:"name"`
	// Sensors is the comma separated list of sensor ids.
	Sensors string `yaml:"sensors"`
	// Delays is "detection,alarmOn,alarmOff" in seconds.
	Delays string `yaml:"delays"`
	// IntrusionStage enables the separate Intrusion output.
	IntrusionStage bool `yaml:"intrusion_stage"`
	// IntrusionDelay is the confirmation delay in seconds between Detection and Intrusion.
	IntrusionDelay int `yaml:"intrusion_delay"`
}

// HubConfig holds the sensor hub connection settings.
type HubConfig struct {
	Address  string        `yaml:"address"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
	// Mirror maps output names to existing hub switches that follow the zone outputs.
	Mirror map[string]int `yaml:"mirror"`
}

// HistoryConfig configures the SQLite history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MQTTConfig configures the MQTT publisher.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	QoS         byte   `yaml:"qos"`
}

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// InfluxDBConfig configures the InfluxDB publisher.
type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

const (
	// DefaultConfigFilename is the default filename for the settings.
	DefaultConfigFilename = "security-zone-settings.yaml"

	// DefaultOutputsFilename is the default filename for the zone outputs JSON.
	DefaultOutputsFilename = "security-zone-outputs.json"

	// DefaultHistoryFilename is the default SQLite history database.
	DefaultHistoryFilename = "security-zone-history.db"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultHeartbeat is the default interval between evaluations.
	DefaultHeartbeat = 10 * time.Second

	// DefaultHubTimeout bounds a single sensor poll.
	DefaultHubTimeout = 5 * time.Second

	// DefaultZoneName is used when the zone has no name.
	DefaultZoneName = "zone"

	// DefaultDelays mirrors zone.DefaultDelays in the CSV form.
	DefaultDelays = "0,0,60"

	// DefaultMQTTTopicPrefix is the root of the MQTT topics.
	DefaultMQTTTopicPrefix = "securityzone"

	// DefaultMQTTClientID identifies the controller at the broker.
	DefaultMQTTClientID = "security-zone"

	// DefaultKafkaTopic receives the transition events.
	DefaultKafkaTopic = "security-zone.events"

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600

	// maxQoS is the highest MQTT quality of service level.
	maxQoS = 2
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errHubAddressRequired is returned when the hub address is missing.
	errHubAddressRequired = errors.New("hub address must be provided")
	// errHubPortInvalid is returned for a hub port outside 1..65535.
	errHubPortInvalid = errors.New("hub port must be between 1 and 65535")
	// errMQTTBrokerRequired is returned when MQTT is enabled without a broker.
	errMQTTBrokerRequired = errors.New("mqtt broker must be provided")
	// errMQTTQoSInvalid is returned for a QoS above 2.
	errMQTTQoSInvalid = errors.New("mqtt qos must be 0, 1 or 2")
	// errKafkaBrokersRequired is returned when Kafka is enabled without brokers.
	errKafkaBrokersRequired = errors.New("kafka brokers must be provided")
	// errInfluxIncomplete is returned when InfluxDB is enabled without URL, org or bucket.
	errInfluxIncomplete = errors.New("influxdb url, org and bucket must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
// Zone parameters are not validated here: see ZoneConfig.Resolve.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: the file may hold hub credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(settings *Config) error {
	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.Hub.Address == "" {
		return errHubAddressRequired
	}

	if settings.Hub.Port <= 0 || settings.Hub.Port > 65535 {
		return errHubPortInvalid
	}

	applyDefaults(settings)

	return validateIntegrations(settings)
}

// applyDefaults fills optional fields left empty.
func applyDefaults(settings *Config) {
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.Heartbeat <= 0 {
		settings.Heartbeat = DefaultHeartbeat
	}

	if settings.Hub.Timeout <= 0 {
		settings.Hub.Timeout = DefaultHubTimeout
	}

	if settings.OutputsFile == "" {
		settings.OutputsFile = DefaultOutputsFilename
	}

	if settings.Zone.Name == "" {
		settings.Zone.Name = DefaultZoneName
	}

	if settings.Zone.Delays == "" {
		settings.Zone.Delays = DefaultDelays
	}

	if settings.History.Path == "" {
		settings.History.Path = DefaultHistoryFilename
	}

	if settings.MQTT.TopicPrefix == "" {
		settings.MQTT.TopicPrefix = DefaultMQTTTopicPrefix
	}

	if settings.MQTT.ClientID == "" {
		settings.MQTT.ClientID = DefaultMQTTClientID
	}

	if settings.Kafka.Topic == "" {
		settings.Kafka.Topic = DefaultKafkaTopic
	}
}

// validateIntegrations checks the optional publishers that are enabled.
func validateIntegrations(settings *Config) error {
	if settings.MQTT.Enabled {
		if settings.MQTT.Broker == "" {
			return errMQTTBrokerRequired
		}

		if _, err := url.Parse(settings.MQTT.Broker); err != nil {
			return fmt.Errorf("invalid mqtt broker: %w", err)
		}
	}

	if settings.MQTT.QoS > maxQoS {
		return errMQTTQoSInvalid
	}

	if settings.Kafka.Enabled && len(settings.Kafka.Brokers) == 0 {
		return errKafkaBrokersRequired
	}

	if settings.InfluxDB.Enabled {
		if settings.InfluxDB.URL == "" || settings.InfluxDB.Org == "" || settings.InfluxDB.Bucket == "" {
			return errInfluxIncomplete
		}

		if _, err := url.ParseRequestURI(settings.InfluxDB.URL); err != nil {
			return fmt.Errorf("invalid influxdb url: %w", err)
		}
	}

	return nil
}

// Resolve turns the raw zone parameters into a zone.Config.
// It never fails: unusable values fall back to safe defaults and every
// substitution is reported through the returned error, which wraps
// zone.ErrConfiguration.
func (z *ZoneConfig) Resolve() (zone.Config, error) {
	var issues []error

	ids, err := zone.ParseSensorIDs(z.Sensors)
	if err != nil {
		issues = append(issues, err)
	}

	delays, err := zone.ParseDelays(z.Delays)
	if err != nil {
		issues = append(issues, err)
	}

	intrusionDelay := time.Duration(z.IntrusionDelay) * time.Second
	if z.IntrusionDelay < 0 {
		intrusionDelay = 0

		issues = append(issues, fmt.Errorf(
			"%w: intrusion delay %d is negative, 0 is used instead", zone.ErrConfiguration, z.IntrusionDelay,
		))
	}

	name := z.Name
	if name == "" {
		name = DefaultZoneName
	}

	return zone.Config{
		Name:           name,
		SensorIDs:      ids,
		Delays:         delays,
		IntrusionStage: z.IntrusionStage,
		IntrusionDelay: intrusionDelay,
	}, errors.Join(issues...)
}

// MirrorOutputs converts the hub mirror map to zone outputs.
// Unknown output names and non-positive switch ids are reported and skipped.
func (h *HubConfig) MirrorOutputs() (map[zone.Output]int, error) {
	var (
		result = make(map[zone.Output]int, len(h.Mirror))
		issues []error
	)

	for name, idx := range h.Mirror {
		output, ok := zone.ParseOutput(name)
		if !ok {
			issues = append(issues, fmt.Errorf("%w: unknown mirrored output %q", zone.ErrConfiguration, name))
			continue
		}

		if idx <= 0 {
			continue
		}

		result[output] = idx
	}

	return result, errors.Join(issues...)
}
