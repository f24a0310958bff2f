package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides is the SYSQ_* environment surface layered over the file
// values. Pointer fields stay nil when the variable is unset.
type envOverrides struct {
	ChannelDir          *string `envconfig:"CHANNEL_DIR"`
	ChannelCommandName  *string `envconfig:"CHANNEL_COMMAND_NAME"`
	ChannelResponseName *string `envconfig:"CHANNEL_RESPONSE_NAME"`
	ChannelCapacity     *int    `envconfig:"CHANNEL_CAPACITY"`
	ChannelMaxMsgSize   *int    `envconfig:"CHANNEL_MAX_MESSAGE_SIZE"`
	ChannelPerms        *string `envconfig:"CHANNEL_PERMISSIONS"`
	SendTimeoutMS       *int    `envconfig:"CHANNEL_SEND_TIMEOUT_MS"`
	RecvTimeoutMS       *int    `envconfig:"CHANNEL_RECV_TIMEOUT_MS"`
	DialBudgetMS        *int    `envconfig:"CHANNEL_DIAL_BUDGET_MS"`
}

// applyEnv layers SYSQ_* environment overrides onto cfg.
func applyEnv(cfg Config) (Config, error) {
	var o envOverrides
	if err := envconfig.Process("sysq", &o); err != nil {
		return Config{}, fmt.Errorf("environment overrides: %w", err)
	}

	if o.ChannelDir != nil {
		cfg.Channel.Dir = *o.ChannelDir
	}
	if o.ChannelCommandName != nil {
		cfg.Channel.CommandName = *o.ChannelCommandName
	}
	if o.ChannelResponseName != nil {
		cfg.Channel.ResponseName = *o.ChannelResponseName
	}
	if o.ChannelCapacity != nil {
		cfg.Channel.Capacity = *o.ChannelCapacity
	}
	if o.ChannelMaxMsgSize != nil {
		cfg.Channel.MaxMsgSize = *o.ChannelMaxMsgSize
	}
	if o.ChannelPerms != nil {
		perms, err := ParsePerms(*o.ChannelPerms)
		if err != nil {
			return Config{}, fmt.Errorf("environment overrides: %w", err)
		}
		cfg.Channel.Perms = perms
	}
	if o.SendTimeoutMS != nil {
		cfg.Channel.SendTimeoutMS = *o.SendTimeoutMS
	}
	if o.RecvTimeoutMS != nil {
		cfg.Channel.RecvTimeoutMS = *o.RecvTimeoutMS
	}
	if o.DialBudgetMS != nil {
		cfg.Channel.DialBudgetMS = *o.DialBudgetMS
	}

	return cfg, nil
}
