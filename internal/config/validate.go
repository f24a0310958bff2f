package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)
	ch := cfg.Channel

	if strings.TrimSpace(ch.CommandName) == "" {
		return nil, fmt.Errorf("channel.command_name must not be empty")
	}
	if strings.TrimSpace(ch.ResponseName) == "" {
		return nil, fmt.Errorf("channel.response_name must not be empty")
	}
	if ch.CommandName == ch.ResponseName {
		return nil, fmt.Errorf("channel.command_name and channel.response_name must differ")
	}
	for _, name := range []string{ch.CommandName, ch.ResponseName} {
		if strings.ContainsAny(name, "/\\") {
			return nil, fmt.Errorf("channel name %q must not contain path separators", name)
		}
	}
	if ch.Capacity <= 0 {
		return nil, fmt.Errorf("channel.capacity must be > 0")
	}
	if ch.MaxMsgSize < 64 {
		return nil, fmt.Errorf("channel.max_message_size must be >= 64")
	}
	if ch.Perms == 0 || ch.Perms > 0o777 {
		return nil, fmt.Errorf("channel.permissions must be an octal mask in (0, 0777]")
	}
	if ch.SendTimeoutMS < 0 || ch.RecvTimeoutMS < 0 {
		return nil, fmt.Errorf("channel timeouts must be >= 0")
	}
	if ch.DialBudgetMS <= 0 {
		return nil, fmt.Errorf("channel.dial_budget_ms must be > 0")
	}

	if ch.MaxMsgSize < 512 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("channel.max_message_size=%d may truncate multi-line responses", ch.MaxMsgSize),
		})
	}

	return warnings, nil
}
