package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads configuration content as line-oriented `key = value` pairs.
// Blank lines and `#` comments are ignored. Unknown keys fail with their
// line number. Warnings are always nil here; the slot exists because
// validation shares the Warning type and Load merges both sources.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg := base

	for i, raw := range strings.Split(content, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, nil, fmt.Errorf("line %d: expected key = value", lineNo)
		}

		if err := apply(&cfg, strings.TrimSpace(key), unquote(strings.TrimSpace(value))); err != nil {
			return Config{}, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	return cfg, nil, nil
}

func apply(cfg *Config, key, value string) error {
	switch key {
	case "channel.dir":
		cfg.Channel.Dir = value
	case "channel.command_name":
		cfg.Channel.CommandName = value
	case "channel.response_name":
		cfg.Channel.ResponseName = value
	case "channel.capacity":
		return applyInt(&cfg.Channel.Capacity, key, value)
	case "channel.max_message_size":
		return applyInt(&cfg.Channel.MaxMsgSize, key, value)
	case "channel.permissions":
		perms, err := ParsePerms(value)
		if err != nil {
			return err
		}
		cfg.Channel.Perms = perms
	case "channel.send_timeout_ms":
		return applyInt(&cfg.Channel.SendTimeoutMS, key, value)
	case "channel.recv_timeout_ms":
		return applyInt(&cfg.Channel.RecvTimeoutMS, key, value)
	case "channel.dial_budget_ms":
		return applyInt(&cfg.Channel.DialBudgetMS, key, value)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

func applyInt(target *int, key, value string) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: expected integer, got %q", key, value)
	}
	*target = parsed
	return nil
}

// ParsePerms reads an octal permission mask such as "0666".
func ParsePerms(value string) (uint32, error) {
	parsed, err := strconv.ParseUint(strings.TrimPrefix(value, "0o"), 8, 32)
	if err != nil {
		return 0, fmt.Errorf("channel.permissions: expected octal mask, got %q", value)
	}
	return uint32(parsed), nil
}

func unquote(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}
	return value
}
