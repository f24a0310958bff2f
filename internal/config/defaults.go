package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Channel: ChannelConfig{
			CommandName:  "sysq-command.sock",
			ResponseName: "sysq-response.sock",
			Capacity:     10,
			MaxMsgSize:   1024,
			Perms:        0o666,
			DialBudgetMS: 3000,
		},
	}
}
