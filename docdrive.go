// Package docdrive drives external command-line AI assistants as
// interchangeable backends for document analysis.
//
// Heterogeneous CLI tools are normalized behind one uniform contract: a
// [Request] goes in, a [Response] or a structured [*ErrorEntry] comes out,
// regardless of which tool ran underneath.
//
// # Core Types
//
//   - [Request] — role-tagged messages plus a system-instructions block
//   - [Command] — the concrete argv, stdin payload, and environment for one tool
//   - [Result] — the terminal outcome of one execution attempt
//   - [Response] — normalized analysis output with usage and latency metadata
//   - [ErrorEntry] — one classified, user-presentable failure
//
// # Vocabulary
//
// The root package defines the shared vocabulary for all providers. The
// generic subprocess engine lives in the engine package, failure
// classification in classify, and the per-tool facades in provider and its
// subpackages. Providers translate the vocabulary into their own flags and
// stdin formats; nothing tool-specific leaks into this package.
//
// # Quick Start
//
//	facade := provider.New(claude.New())
//	resp, err := facade.Send(ctx, docdrive.Request{
//	    Instructions: "You are a contract reviewer.",
//	    Messages: []docdrive.Message{
//	        {Role: docdrive.RoleUser, Content: documentText},
//	    },
//	})
//	if entry, ok := docdrive.AsEntry(err); ok {
//	    fmt.Println(entry.UserMessage)
//	}
package docdrive
