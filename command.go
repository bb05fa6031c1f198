package docdrive

// Command is the concrete invocation for one external tool: argv, input
// payload, and environment. Commands are built by a tool's BuildCommand and
// consumed once by the engine.
//
// The payload always travels on the child's stdin, never interpolated into
// Args — this sidesteps argument-length limits and shell-escaping hazards.
type Command struct {
	// Args is the argument vector. Args[0] is the executable name,
	// resolved via standard PATH search at spawn time.
	Args []string `json:"args"`

	// Stdin is the input payload, written once and then closed to signal
	// end-of-input. Empty means the stdin pipe is closed immediately.
	Stdin string `json:"stdin,omitempty"`

	// Env holds environment overrides merged over the parent environment.
	Env map[string]string `json:"env,omitempty"`

	// Dir is the working directory. Empty inherits the parent's.
	Dir string `json:"dir,omitempty"`
}
