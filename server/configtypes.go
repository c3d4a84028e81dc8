package server

import "time"

type AuthType string

const (
	AuthTypeSecret AuthType = "secret"
	AuthTypeNone   AuthType = ""
)

type ICEServer struct {
	URLs       []string `yaml:"urls"`
	AuthType   AuthType `yaml:"auth_type"`
	AuthSecret struct {
		Username string `yaml:"username"`
		Secret   string `yaml:"secret"`
	} `yaml:"auth_secret"`
}

type TLSConfig struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type PrometheusConfig struct {
	AccessToken string `yaml:"access_token"`
}

// RelayConfig configures the websocket relay endpoint.
type RelayConfig struct {
	// SendWelcomeMessage sends WelcomeMessage to every client right after it
	// was accepted.
	SendWelcomeMessage bool   `yaml:"send_welcome_message"`
	WelcomeMessage     string `yaml:"welcome_message"`

	// LogDisconnects logs every closed connection at info level instead of
	// debug.
	LogDisconnects bool `yaml:"log_disconnects"`

	// AnnouncePresence notifies the other clients of a channel about joins
	// and leaves.
	AnnouncePresence bool `yaml:"announce_presence"`

	// AddressedDelivery delivers JSON text frames with a string "to" field
	// only to the connections with that label.
	AddressedDelivery bool `yaml:"addressed_delivery"`

	// MaxChannelConnections limits the number of connections per channel.
	// Zero means unlimited.
	MaxChannelConnections int `yaml:"max_channel_connections"`

	// SendQueueSize is the number of frames buffered per recipient before it
	// is considered too slow and disconnected.
	SendQueueSize int `yaml:"send_queue_size"`

	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ReadLimit is the maximum size of an inbound frame in bytes.
	ReadLimit int64 `yaml:"read_limit"`

	// PingInterval enables websocket pings. Connections that do not answer
	// within PingTimeout are closed. Zero disables pings.
	PingInterval time.Duration `yaml:"ping_interval"`
	PingTimeout  time.Duration `yaml:"ping_timeout"`

	// AllowedOrigins are host patterns accepted in the Origin header. When
	// empty, any origin is accepted.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	BaseURL    string           `yaml:"base_url"`
	BindHost   string           `yaml:"bind_host"`
	BindPort   int              `yaml:"bind_port"`
	StaticDir  string           `yaml:"static_dir"`
	ICEServers []ICEServer      `yaml:"ice_servers"`
	TLS        TLSConfig        `yaml:"tls"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Relay      RelayConfig      `yaml:"relay"`
}
