// Package config resolves, parses, validates, and defaults sysq configuration.
package config

// Config is the fully materialized runtime configuration used by sysq.
type Config struct {
	Channel ChannelConfig
}

// ChannelConfig is the full surface of the two message channels: naming,
// bounds, permissions, and blocking behavior.
type ChannelConfig struct {
	// Dir is the directory holding the channel names. Empty means the
	// runtime directory resolved at startup.
	Dir          string
	CommandName  string
	ResponseName string

	// Capacity is the max number of queued messages per direction.
	Capacity int
	// MaxMsgSize is the fixed message buffer size in bytes.
	MaxMsgSize int
	// Perms is the permission mask applied to each channel name.
	Perms uint32

	// Zero timeouts make send/receive block indefinitely, which is the
	// normal interactive mode. Tests set them to stay cancellable.
	SendTimeoutMS int
	RecvTimeoutMS int

	// DialBudgetMS bounds the client's connect retries at startup.
	DialBudgetMS int
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
