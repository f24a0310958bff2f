// Package message defines the command vocabulary and the bounded-length
// payload texts exchanged between the client and dispatcher roles.
package message

import "fmt"

// Prompt is printed by the client before each line of input.
const Prompt = "Enter a command: "

// Help is the static response for the help command, also printed when the
// client starts.
const Help = "Available Commands:\n" +
	" > getdomainname - get the system domain name and print it to the console\n" +
	" > gethostname - get the system host name and print it to the console\n" +
	" > uname - get the system Unix name and print it to the console\n" +
	" > help - gets this help message and prints it to the console\n" +
	" > exit - exit the application"

// Goodbye is the static response for the exit command.
const Goodbye = "Goodbye!"

const (
	unknownPrefix = `Unknown command: "`
	unknownSuffix = `"`
)

// Truncate bounds s to at most max bytes. A non-positive max yields "".
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// FormatUnknown wraps an unrecognized input in the diagnostic wrapper,
// truncating the input so the combined text never exceeds max bytes. The
// truncation boundary reserves exactly the wrapper length, so a payload that
// fits keeps its closing quote.
func FormatUnknown(input string, max int) string {
	budget := max - len(unknownPrefix) - len(unknownSuffix)
	return Truncate(unknownPrefix+Truncate(input, budget)+unknownSuffix, max)
}

// FormatUname renders the multi-line uname response.
func FormatUname(system, node, release, version, machine, domain string) string {
	return fmt.Sprintf(
		" System: %s\n"+
			"   Node: %s\n"+
			"Release: %s\n"+
			"Version: %s\n"+
			"Machine: %s\n"+
			" Domain: %s",
		system, node, release, version, machine, domain,
	)
}
