package message

// Command is one entry of the fixed dispatcher vocabulary.
type Command string

const (
	CommandGetDomainName Command = "getdomainname"
	CommandGetHostName   Command = "gethostname"
	CommandUname         Command = "uname"
	CommandHelp          Command = "help"
	CommandExit          Command = "exit"
	CommandUnknown       Command = "unknown"
)

// Classify maps a received payload onto the command table.
//
// Matching is exact and case-sensitive: no trimming, no folding. Every input
// classifies into exactly one variant; anything outside the table is
// CommandUnknown.
func Classify(input string) Command {
	switch Command(input) {
	case CommandGetDomainName, CommandGetHostName, CommandUname, CommandHelp, CommandExit:
		return Command(input)
	default:
		return CommandUnknown
	}
}
