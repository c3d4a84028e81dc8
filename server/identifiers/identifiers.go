package identifiers

// ConnID uniquely identifies a single websocket connection to the relay. It
// is assigned by the server when the connection is accepted.
type ConnID string

// ChannelID names a group of connections that relay frames to each other.
// The empty ChannelID is the default channel served on /ws.
type ChannelID string

// Label is an optional, client provided tag such as "pageA" or "pageB". It
// is not unique; several connections may share the same label.
type Label string

// DefaultChannel is the channel used when the client did not request one.
const DefaultChannel ChannelID = ""

const defaultChannelName = "default"

// NewChannelID returns the ChannelID for a channel name taken from a URL.
// Both the empty name and "default" refer to DefaultChannel.
func NewChannelID(name string) ChannelID {
	if name == defaultChannelName {
		return DefaultChannel
	}

	return ChannelID(name)
}

func (c ConnID) String() string {
	return string(c)
}

func (c ChannelID) String() string {
	if c == DefaultChannel {
		return defaultChannelName
	}

	return string(c)
}

func (l Label) String() string {
	return string(l)
}
