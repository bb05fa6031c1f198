package claude_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialmindsaarhus/docdrive"
	"github.com/specialmindsaarhus/docdrive/provider"
	"github.com/specialmindsaarhus/docdrive/provider/claude"
	"github.com/specialmindsaarhus/docdrive/providertest"
)

func TestCompliance(t *testing.T) {
	providertest.RunToolTests(t, func() provider.Tool { return claude.New() })
}

func request(instructions, body string) docdrive.Request {
	return docdrive.Request{
		Instructions: instructions,
		Messages: []docdrive.Message{
			{Role: docdrive.RoleUser, Content: body},
		},
	}
}

func TestBuildCommandDefaults(t *testing.T) {
	cmd, err := claude.New().BuildCommand(request("", "the document"))
	require.NoError(t, err)

	assert.Equal(t, []string{"claude", "-p", "--output-format", "text"}, cmd.Args)
	assert.Equal(t, "the document", cmd.Stdin)
	assert.Empty(t, cmd.Dir)
}

func TestBuildCommandInstructionsFlag(t *testing.T) {
	// Claude has a dedicated system-instructions flag; instructions must
	// ride on argv, not mixed into the stdin payload.
	cmd, err := claude.New().BuildCommand(request("Be terse.", "doc"))
	require.NoError(t, err)

	assert.Contains(t, cmd.Args, "--append-system-prompt")
	assert.Contains(t, cmd.Args, "Be terse.")
	assert.Equal(t, "doc", cmd.Stdin)
}

func TestBuildCommandModelFlag(t *testing.T) {
	cmd, err := claude.New(claude.WithModel("sonnet")).BuildCommand(request("", "doc"))
	require.NoError(t, err)

	assert.Contains(t, cmd.Args, "--model")
	assert.Contains(t, cmd.Args, "sonnet")
}

func TestBuildCommandNullByteInstructionsSkipped(t *testing.T) {
	cmd, err := claude.New().BuildCommand(request("bad\x00instructions", "doc"))
	require.NoError(t, err)

	assert.NotContains(t, cmd.Args, "--append-system-prompt")
}

func TestBuildCommandMultipleUserMessages(t *testing.T) {
	req := docdrive.Request{
		Messages: []docdrive.Message{
			{Role: docdrive.RoleUser, Content: "page one"},
			{Role: docdrive.RoleAssistant, Content: "noted"},
			{Role: docdrive.RoleUser, Content: "page two"},
		},
	}
	cmd, err := claude.New().BuildCommand(req)
	require.NoError(t, err)

	assert.Equal(t, "page one\n\npage two", cmd.Stdin)
}

func TestWithBinary(t *testing.T) {
	assert.Equal(t, "claude-dev", claude.New(claude.WithBinary("claude-dev")).Executable())
	assert.Equal(t, "claude", claude.New(claude.WithBinary("")).Executable(),
		"empty override must keep the default")
}

func TestNormalizeStripsANSI(t *testing.T) {
	tool := claude.New()

	assert.Equal(t, "bold text", tool.Normalize("\x1b[1mbold\x1b[0m text\n"))
	assert.Equal(t, "plain", tool.Normalize("  plain  "))
}

func TestParseError(t *testing.T) {
	tool := claude.New()

	t.Run("CreditBalance", func(t *testing.T) {
		entry, ok := tool.ParseError(docdrive.Result{
			ExitCode: 1,
			Stderr:   "API Error: your credit balance is too low",
		})
		require.True(t, ok)
		assert.Equal(t, docdrive.KindQuotaExceeded, entry.Kind)
		assert.True(t, entry.Recoverable)
	})

	t.Run("Overloaded", func(t *testing.T) {
		entry, ok := tool.ParseError(docdrive.Result{
			ExitCode: 1,
			Stderr:   `{"type":"overloaded_error"}`,
		})
		require.True(t, ok)
		assert.Equal(t, docdrive.KindModelOverloaded, entry.Kind)
	})

	t.Run("UnrecognizedFallsThrough", func(t *testing.T) {
		_, ok := tool.ParseError(docdrive.Result{ExitCode: 1, Stderr: "some other error"})
		assert.False(t, ok)
	})

	t.Run("FlagsNeverOverridden", func(t *testing.T) {
		_, ok := tool.ParseError(docdrive.Result{Cancelled: true, Stderr: "billing"})
		assert.False(t, ok, "cancellation must reach the shared classifier")
	})
}
