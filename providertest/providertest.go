// Package providertest provides a reusable compliance suite for
// [provider.Tool] implementations.
//
// Tool packages run the suite from their own tests:
//
//	func TestCompliance(t *testing.T) {
//	    providertest.RunToolTests(t, func() provider.Tool { return claude.New() })
//	}
package providertest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialmindsaarhus/docdrive"
	"github.com/specialmindsaarhus/docdrive/provider"
)

// payloadMarker is content that must never leak from stdin into argv.
const payloadMarker = "PAYLOAD-MARKER-7f3a ; rm -rf / $(echo owned)"

// sampleRequest returns a well-formed request exercising instructions,
// multiple user messages, and advisory options.
func sampleRequest() docdrive.Request {
	temp := 0.2
	return docdrive.Request{
		Instructions: "You are a contract reviewer. Answer in plain prose.",
		Messages: []docdrive.Message{
			{Role: docdrive.RoleUser, Content: payloadMarker},
			{Role: docdrive.RoleUser, Content: "Second page of the document."},
		},
		Options: docdrive.ExecOptions{Temperature: &temp, MaxTokens: 2048},
	}
}

// RunToolTests runs all applicable compliance suites for a Tool. Optional
// capabilities are discovered via type assertion, mirroring how the facade
// resolves them at construction time. The factory is called once per subtest
// so each check sees fresh tool state.
func RunToolTests(t *testing.T, factory func() provider.Tool) {
	t.Helper()

	t.Run("Identity", func(t *testing.T) {
		runIdentityTests(t, factory)
	})
	t.Run("BuildCommand", func(t *testing.T) {
		runBuildCommandTests(t, factory)
	})
	t.Run("Normalize", func(t *testing.T) {
		runNormalizeTests(t, factory)
	})

	probe := factory()
	if _, ok := probe.(provider.VersionProber); ok {
		t.Run("VersionProber", func(t *testing.T) {
			runVersionProberTests(t, func() provider.VersionProber {
				return factory().(provider.VersionProber)
			})
		})
	}
	if _, ok := probe.(provider.Authenticator); ok {
		t.Run("Authenticator", func(t *testing.T) {
			cmd := factory().(provider.Authenticator).LoginCommand()
			assert.NotEmpty(t, cmd, "login command must be non-empty")
		})
	}
	if _, ok := probe.(provider.Installer); ok {
		t.Run("Installer", func(t *testing.T) {
			hint := factory().(provider.Installer).InstallHint()
			assert.NotEmpty(t, hint, "install hint must be non-empty")
		})
	}
}

func runIdentityTests(t *testing.T, factory func() provider.Tool) {
	t.Helper()

	t.Run("IDNonEmpty", func(t *testing.T) {
		require.NotEmpty(t, factory().ID())
	})
	t.Run("DisplayNameNonEmpty", func(t *testing.T) {
		require.NotEmpty(t, factory().DisplayName())
	})
	t.Run("ExecutableNonEmpty", func(t *testing.T) {
		exe := factory().Executable()
		require.NotEmpty(t, exe)
		assert.NotContains(t, exe, "\x00")
	})
}

func runBuildCommandTests(t *testing.T, factory func() provider.Tool) {
	t.Helper()

	t.Run("ArgsNonEmpty", func(t *testing.T) {
		cmd, err := factory().BuildCommand(sampleRequest())
		require.NoError(t, err)
		require.NotEmpty(t, cmd.Args)
	})

	t.Run("ExecutableIsArgsZero", func(t *testing.T) {
		tool := factory()
		cmd, err := tool.BuildCommand(sampleRequest())
		require.NoError(t, err)
		assert.Equal(t, tool.Executable(), cmd.Args[0])
	})

	t.Run("PayloadNeverInArgv", func(t *testing.T) {
		cmd, err := factory().BuildCommand(sampleRequest())
		require.NoError(t, err)
		for i, arg := range cmd.Args {
			assert.NotContains(t, arg, payloadMarker, "args[%d] leaks payload", i)
		}
	})

	t.Run("PayloadOnStdin", func(t *testing.T) {
		cmd, err := factory().BuildCommand(sampleRequest())
		require.NoError(t, err)
		assert.Contains(t, cmd.Stdin, payloadMarker)
	})

	t.Run("InstructionsHonored", func(t *testing.T) {
		req := sampleRequest()
		cmd, err := factory().BuildCommand(req)
		require.NoError(t, err)
		// Either strategy is valid: a dedicated flag (argv) or
		// concatenation ahead of the payload (stdin).
		inArgv := false
		for _, arg := range cmd.Args[1:] {
			if strings.Contains(arg, req.Instructions) {
				inArgv = true
			}
		}
		inStdin := strings.Contains(cmd.Stdin, req.Instructions)
		assert.True(t, inArgv || inStdin, "instructions must reach the tool")
		if inStdin && !inArgv {
			assert.Less(t, strings.Index(cmd.Stdin, req.Instructions),
				strings.Index(cmd.Stdin, payloadMarker),
				"concatenated instructions must precede the payload")
		}
	})

	t.Run("NoNullBytesInArgs", func(t *testing.T) {
		cmd, err := factory().BuildCommand(sampleRequest())
		require.NoError(t, err)
		for i, arg := range cmd.Args {
			assert.NotContains(t, arg, "\x00", "args[%d] contains null bytes", i)
		}
	})
}

func runNormalizeTests(t *testing.T, factory func() provider.Tool) {
	t.Helper()

	inputs := []string{
		"",
		"plain analysis text",
		"  padded  \n\n",
		"line one\nline two\n",
		"\x1b[1mbold\x1b[0m text",
	}

	t.Run("Idempotent", func(t *testing.T) {
		tool := factory()
		for _, in := range inputs {
			once := tool.Normalize(in)
			twice := tool.Normalize(once)
			assert.Equal(t, once, twice, "Normalize not idempotent for %q", in)
		}
	})
}

func runVersionProberTests(t *testing.T, factory func() provider.VersionProber) {
	t.Helper()

	t.Run("ArgsNonEmpty", func(t *testing.T) {
		args := factory().VersionArgs()
		require.NotEmpty(t, args)
		for i, arg := range args {
			assert.NotContains(t, arg, "\x00", "args[%d] contains null bytes", i)
		}
	})
}
