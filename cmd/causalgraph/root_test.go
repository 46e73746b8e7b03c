package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "causalgraph version "))
}

func TestBuildCommand(t *testing.T) {
	out, err := run(t, "0,0.5\n0.02,0\n", "build", "--labels", "a,b", "--format", "target")
	require.NoError(t, err)
	assert.Equal(t, "digraph {a;b;b -> a [label=0.5];a -> b [label=0.02]}\n", out)
}

func TestNormalizeCommand(t *testing.T) {
	out, err := run(t, "digraph {\n\tx0 -> x1 [label=2]\n}\n", "normalize")
	require.NoError(t, err)
	assert.Equal(t, "digraph {x0 -> x1 [label=2]}\n", out)

	_, err = run(t, "digraph {", "normalize")
	assert.Error(t, err)
}

func TestDiffCommand_Args(t *testing.T) {
	_, err := run(t, "", "diff", "only-one.dot")
	assert.Error(t, err)
}
