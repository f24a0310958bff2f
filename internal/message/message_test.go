package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyKnownCommands(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{input: "getdomainname", want: CommandGetDomainName},
		{input: "gethostname", want: CommandGetHostName},
		{input: "uname", want: CommandUname},
		{input: "help", want: CommandHelp},
		{input: "exit", want: CommandExit},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.input))
		})
	}
}

func TestClassifyIsExactAndCaseSensitive(t *testing.T) {
	for _, input := range []string{"", "Exit", "EXIT", " exit", "exit ", "uname -a", "foobar"} {
		require.Equal(t, CommandUnknown, Classify(input), "input %q", input)
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abc", 10))
	require.Equal(t, "abc", Truncate("abcdef", 3))
	require.Equal(t, "", Truncate("abc", 0))
	require.Equal(t, "", Truncate("abc", -1))
}

func TestFormatUnknownWrapsInput(t *testing.T) {
	got := FormatUnknown("foobar", 1024)
	require.Equal(t, `Unknown command: "foobar"`, got)
}

func TestFormatUnknownReservesWrapperSpace(t *testing.T) {
	max := 64
	long := strings.Repeat("x", 200)

	got := FormatUnknown(long, max)
	require.Len(t, got, max)
	require.True(t, strings.HasPrefix(got, `Unknown command: "`))
	require.True(t, strings.HasSuffix(got, `"`), "closing quote must survive truncation")
}

func TestFormatUnknownTinyBudget(t *testing.T) {
	got := FormatUnknown("foobar", 5)
	require.LessOrEqual(t, len(got), 5)
}

func TestFormatUname(t *testing.T) {
	got := FormatUname("Linux", "host", "6.1.0", "#1 SMP", "x86_64", "(none)")
	require.Equal(t,
		" System: Linux\n   Node: host\nRelease: 6.1.0\nVersion: #1 SMP\nMachine: x86_64\n Domain: (none)",
		got,
	)
}
