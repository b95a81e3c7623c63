package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/diskcache/internal/cli"
)

func Test_Shell_Runs_Commands_Against_One_Store(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	script := strings.Join([]string{
		`set users 42 {"name": "ada"} --ttl 1m`,
		`get users 42`,
		`# comments and blank lines are ignored`,
		``,
		`drop users 42`,
		`get users 42`,
		`exit`,
		`get users 42`,
	}, "\n")

	stdout, stderr, code := c.RunWithInput(script, "--clean-every", "0", "shell")
	require.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stdout, "diskcache shell (root="+c.CacheDir())
	cli.AssertContains(t, stdout, `{"name":"ada"}`)
	require.Equal(t, 1, strings.Count(stderr, "not found: users/42"), "commands after exit must not run")
}

func Test_Shell_Reports_Errors_And_Keeps_Going(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	script := "bogus\nshell\nget users\ncheck-segment users\n"

	stdout, stderr, code := c.RunWithInput(script, "shell")
	require.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stderr, "unknown command: bogus")
	cli.AssertContains(t, stderr, "shell cannot be started from the shell")
	cli.AssertContains(t, stderr, "missing arguments")
	cli.AssertContains(t, stdout, "ok")
}

func Test_Shell_Help_Lists_Commands(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, code := c.RunWithInput("help\n", "shell")
	require.Equal(t, 0, code, stderr)

	for _, name := range []string{"get <segment> <id>", "set <segment> <id>", "drop", "sweep", "where", "exit"} {
		cli.AssertContains(t, stdout, name)
	}
}

func Test_Shell_Ends_At_End_Of_Input(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, code := c.RunWithInput("", "shell")
	require.Equal(t, 0, code, stderr)
}

func Test_Shell_Set_Does_Not_Read_Stdin(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, code := c.RunWithInput("set s 1 - --ttl 1m\n[1]\n", "shell")
	require.Equal(t, 0, code, stderr)

	cli.AssertContains(t, stderr, "no stdin")
	cli.AssertContains(t, stderr, "unknown command: [1]")
}
