package channel

// Pair bundles one role's handles on the two directional channels.
//
// Server side: Command is the receiving end, Response the sending end.
// Client side: the directions are reversed. Either way a role sends on one
// member and receives on the other, never both on the same channel.
type Pair struct {
	Command  *Endpoint
	Response *Endpoint
}

// Close releases both handles, attempting each even if the first fails.
func (p *Pair) Close() error {
	if p == nil {
		return nil
	}
	cmdErr := p.Command.Close()
	respErr := p.Response.Close()
	if cmdErr != nil {
		return cmdErr
	}
	return respErr
}

// ListenPair opens both server ends. Each channel's name is removed from the
// filesystem namespace as soon as the client attaches to it, so no unrelated
// process can discover the pair and no stale name outlives a crash.
func ListenPair(cfg Config) (*Pair, error) {
	unlinkOnAttach := func(ep *Endpoint) { _ = ep.Unlink() }

	command, err := listen(cfg.CommandName, cfg, true, unlinkOnAttach)
	if err != nil {
		return nil, err
	}
	response, err := listen(cfg.ResponseName, cfg, false, unlinkOnAttach)
	if err != nil {
		_ = command.Close()
		return nil, err
	}
	return &Pair{Command: command, Response: response}, nil
}

// DialPair opens both client ends against an already-listening server.
func DialPair(cfg Config) (*Pair, error) {
	command, err := dial(cfg.CommandName, cfg, false)
	if err != nil {
		return nil, err
	}
	response, err := dial(cfg.ResponseName, cfg, true)
	if err != nil {
		_ = command.Close()
		return nil, err
	}
	return &Pair{Command: command, Response: response}, nil
}
