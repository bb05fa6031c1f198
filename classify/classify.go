// Package classify turns a failing execution result into exactly one
// taxonomy entry, independent of which external tool produced it.
//
// Classification is a pure function: no I/O, no shared state, deterministic
// for a given result. Rules are ordered and first-match wins — ordering is
// significant for diagnostic text containing multiple keyword classes.
package classify

import (
	"strings"

	"github.com/specialmindsaarhus/docdrive"
)

// maxDetail bounds the raw stderr carried on a fallback entry, keeping log
// size predictable under a tool that dumps a stack trace.
const maxDetail = 500

// rule maps a lowercase-haystack predicate to a taxonomy kind.
type rule struct {
	kind  docdrive.Kind
	match func(haystack string) bool
}

// anyOf returns a predicate matching any of the given lowercase markers.
func anyOf(markers ...string) func(string) bool {
	return func(haystack string) bool {
		for _, m := range markers {
			if strings.Contains(haystack, m) {
				return true
			}
		}
		return false
	}
}

// notInstalled matches diagnostics for a missing executable. The bare
// ENOENT text counts only when its line refers to launching a command —
// a tool complaining about a missing data file is not an install failure.
func notInstalled(haystack string) bool {
	if anyOf(
		"command not found",
		"is not recognized as an internal or external command",
		"executable file not found",
	)(haystack) {
		return true
	}
	for _, line := range strings.Split(haystack, "\n") {
		if strings.Contains(line, "no such file or directory") &&
			(strings.Contains(line, "exec") || strings.Contains(line, "command")) {
			return true
		}
	}
	return false
}

// Ordered shared rules. Authentication precedes not-installed precedes
// rate-limit; ambiguous text resolves to the earliest matching kind.
var rules = []rule{
	{docdrive.KindAuth, anyOf(
		"unauthorized",
		"unauthenticated",
		"invalid credentials",
		"invalid_credentials",
		"expired token",
		"expired_token",
		"authentication",
		"auth",
		"login",
	)},
	{docdrive.KindNotInstalled, notInstalled},
	{docdrive.KindRateLimit, anyOf(
		"429",
		"rate limit",
		"too many requests",
		"quota exceeded",
		"throttle",
	)},
	{docdrive.KindContextLength, anyOf(
		"context length",
		"exceeds maximum",
		"token limit",
		"input too large",
	)},
	{docdrive.KindNetwork, anyOf(
		"connection refused",
		"connection reset",
		"dns",
		"no such host",
		"socket hang up",
		"network",
		"etimedout",
		"econnrefused",
		"econnreset",
	)},
}

// Classify returns the single taxonomy entry for a failing result.
//
// The cancelled and timed-out flags take precedence over any diagnostic
// text. Text rules run over the lowercased concatenation of stderr (primary)
// and stdout (secondary — some tools print installation hints to stdout).
func Classify(provider string, res docdrive.Result) *docdrive.ErrorEntry {
	if res.Cancelled {
		return entry(docdrive.KindCancelled, provider, "operation cancelled", res)
	}
	if res.TimedOut {
		return entry(docdrive.KindTimeout, provider, "operation timed out", res)
	}

	haystack := strings.ToLower(res.Stderr + "\n" + res.Stdout)
	for _, r := range rules {
		if r.match(haystack) {
			return entry(r.kind, provider, firstLine(res.Stderr), res)
		}
	}

	e := entry(docdrive.KindProvider, provider, firstLine(res.Stderr), res)
	e.Detail = truncate(res.Stderr, maxDetail)
	return e
}

// entry assembles an ErrorEntry with the kind's localized messaging.
func entry(kind docdrive.Kind, provider, message string, res docdrive.Result) *docdrive.ErrorEntry {
	if message == "" {
		message = string(kind)
	}
	return &docdrive.ErrorEntry{
		Kind:        kind,
		Provider:    provider,
		Message:     message,
		Recoverable: kind.Recoverable(),
		UserMessage: UserMessage(kind),
		Suggestions: Suggestions(kind),
		ExitCode:    res.ExitCode,
	}
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
