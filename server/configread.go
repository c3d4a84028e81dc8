package server

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/pion/ice/v2"
	"gopkg.in/yaml.v2"
)

const EnvPrefix = "SIGRELAY_"

const (
	DefaultBindPort       = 7703
	DefaultWelcomeMessage = "Welcome to the signaling relay"
	DefaultSendQueueSize  = 64
	DefaultWriteTimeout   = 5 * time.Second
	DefaultReadLimit      = 1 << 20
	DefaultPingTimeout    = 10 * time.Second
)

func ReadConfigFile(filename string, c *Config) (err error) {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Annotatef(err, "read config file: %s", filename)
	}

	defer f.Close()

	err = ReadConfigYAML(f, c)

	return errors.Annotatef(err, "read yaml config: %s", filename)
}

func ReadConfigFiles(filenames []string, c *Config) (err error) {
	for _, filename := range filenames {
		err = ReadConfigFile(filename, c)
		if err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}

func InitConfig(c *Config) {
	c.BindPort = DefaultBindPort
	c.ICEServers = []ICEServer{{
		URLs: []string{"stun:stun.l.google.com:19302"},
	}}
	c.Relay.WelcomeMessage = DefaultWelcomeMessage
	c.Relay.SendQueueSize = DefaultSendQueueSize
	c.Relay.WriteTimeout = DefaultWriteTimeout
	c.Relay.ReadLimit = DefaultReadLimit
	c.Relay.PingTimeout = DefaultPingTimeout
}

// ReadConfig applies, in order, the defaults, the YAML files and the
// SIGRELAY_ environment variables, and validates the result.
func ReadConfig(filenames []string) (c Config, err error) {
	InitConfig(&c)

	if err = ReadConfigFiles(filenames, &c); err != nil {
		return c, errors.Trace(err)
	}

	ReadConfigFromEnv(EnvPrefix, &c)

	err = ValidateConfig(c)

	return c, errors.Annotate(err, "validate config")
}

func ReadConfigYAML(reader io.Reader, c *Config) error {
	decoder := yaml.NewDecoder(reader)
	if err := decoder.Decode(c); err != nil {
		return errors.Annotatef(err, "decode yaml")
	}

	return nil
}

func ReadConfigFromEnv(prefix string, c *Config) {
	setEnvString(&c.BaseURL, prefix+"BASE_URL")
	setEnvString(&c.BindHost, prefix+"BIND_HOST")
	setEnvInt(&c.BindPort, prefix+"BIND_PORT")
	setEnvString(&c.StaticDir, prefix+"STATIC_DIR")
	setEnvString(&c.TLS.Cert, prefix+"TLS_CERT")
	setEnvString(&c.TLS.Key, prefix+"TLS_KEY")

	if value, ok := os.LookupEnv(prefix + "ICE_SERVER_URLS"); ok {
		// Do not use the default servers, even if value is empty.
		c.ICEServers = make([]ICEServer, 0, 1)

		var ice ICEServer

		setSlice(&ice.URLs, value)

		if len(ice.URLs) > 0 {
			setEnvAuthType(&ice.AuthType, prefix+"ICE_SERVER_AUTH_TYPE")
			setEnvString(&ice.AuthSecret.Secret, prefix+"ICE_SERVER_SECRET")
			setEnvString(&ice.AuthSecret.Username, prefix+"ICE_SERVER_USERNAME")
			c.ICEServers = append(c.ICEServers, ice)
		}
	}

	setEnvString(&c.Prometheus.AccessToken, prefix+"PROMETHEUS_ACCESS_TOKEN")

	relay := prefix + "RELAY_"

	setEnvBool(&c.Relay.SendWelcomeMessage, relay+"SEND_WELCOME_MESSAGE")
	setEnvString(&c.Relay.WelcomeMessage, relay+"WELCOME_MESSAGE")
	setEnvBool(&c.Relay.LogDisconnects, relay+"LOG_DISCONNECTS")
	setEnvBool(&c.Relay.AnnouncePresence, relay+"ANNOUNCE_PRESENCE")
	setEnvBool(&c.Relay.AddressedDelivery, relay+"ADDRESSED_DELIVERY")
	setEnvInt(&c.Relay.MaxChannelConnections, relay+"MAX_CHANNEL_CONNECTIONS")
	setEnvInt(&c.Relay.SendQueueSize, relay+"SEND_QUEUE_SIZE")
	setEnvDuration(&c.Relay.WriteTimeout, relay+"WRITE_TIMEOUT")
	setEnvInt64(&c.Relay.ReadLimit, relay+"READ_LIMIT")
	setEnvDuration(&c.Relay.PingInterval, relay+"PING_INTERVAL")
	setEnvDuration(&c.Relay.PingTimeout, relay+"PING_TIMEOUT")
	setEnvStringArray(&c.Relay.AllowedOrigins, relay+"ALLOWED_ORIGINS")
}

// ValidateConfig reports the first setting the relay cannot run with.
func ValidateConfig(c Config) error {
	if c.BindPort < 0 || c.BindPort > 65535 {
		return errors.Errorf("invalid port: %d", c.BindPort)
	}

	if (c.TLS.Cert == "") != (c.TLS.Key == "") {
		return errors.New("tls: both cert and key must be set")
	}

	for _, server := range c.ICEServers {
		for _, rawURL := range server.URLs {
			if _, err := ice.ParseURL(rawURL); err != nil {
				return errors.Annotatef(err, "invalid ice server url: %q", rawURL)
			}
		}

		if server.AuthType == AuthTypeSecret && server.AuthSecret.Secret == "" {
			return errors.Errorf("ice server %v: auth_type secret requires a secret", server.URLs)
		}
	}

	r := c.Relay

	switch {
	case r.SendQueueSize < 1:
		return errors.Errorf("relay: send_queue_size must be positive, got: %d", r.SendQueueSize)
	case r.MaxChannelConnections < 0:
		return errors.Errorf("relay: max_channel_connections must not be negative, got: %d", r.MaxChannelConnections)
	case r.WriteTimeout <= 0:
		return errors.Errorf("relay: write_timeout must be positive, got: %s", r.WriteTimeout)
	case r.ReadLimit <= 0:
		return errors.Errorf("relay: read_limit must be positive, got: %d", r.ReadLimit)
	case r.PingInterval < 0:
		return errors.Errorf("relay: ping_interval must not be negative, got: %s", r.PingInterval)
	case r.PingInterval > 0 && r.PingTimeout <= 0:
		return errors.Errorf("relay: ping_timeout must be positive when pings are enabled, got: %s", r.PingTimeout)
	}

	return nil
}

func setSlice(dest *[]string, value string) {
	for _, v := range strings.Split(value, ",") {
		if v != "" {
			*dest = append(*dest, v)
		}
	}
}

func setEnvString(dest *string, name string) {
	value := os.Getenv(name)
	if value != "" {
		*dest = value
	}
}

func setEnvInt(dest *int, name string) {
	value, err := strconv.Atoi(os.Getenv(name))
	if err == nil {
		*dest = value
	}
}

func setEnvInt64(dest *int64, name string) {
	value, err := strconv.ParseInt(os.Getenv(name), 10, 64)
	if err == nil {
		*dest = value
	}
}

func setEnvDuration(dest *time.Duration, name string) {
	value, err := time.ParseDuration(os.Getenv(name))
	if err == nil {
		*dest = value
	}
}

func setEnvBool(dest *bool, name string) {
	// Only explicit values change the setting so that an unset variable does
	// not reset a value read from a file.
	switch os.Getenv(name) {
	case "true":
		*dest = true
	case "false":
		*dest = false
	}
}

func setEnvAuthType(authType *AuthType, name string) {
	switch AuthType(os.Getenv(name)) {
	case AuthTypeSecret:
		*authType = AuthTypeSecret
	case AuthTypeNone:
		*authType = AuthTypeNone
	}
}

func setEnvStringArray(dest *[]string, name string) {
	value := os.Getenv(name)
	if value != "" {
		*dest = strings.Split(value, ",")
	}
}
