package classify

import "github.com/specialmindsaarhus/docdrive"

// messageTable maps taxonomy kinds to user-presentable text. The table is
// locale-shaped: a UI layer can install a translated table via SetMessages
// without touching classification logic. English is the built-in locale.
type messageTable map[docdrive.Kind]messageSet

type messageSet struct {
	user        string
	suggestions []string
}

var messages = defaultMessages()

func defaultMessages() messageTable {
	return messageTable{
		docdrive.KindConfig: {
			user: "The request is incomplete or misconfigured.",
			suggestions: []string{
				"Check that the document and instructions are not empty.",
			},
		},
		docdrive.KindAuth: {
			user: "The AI tool is not logged in.",
			suggestions: []string{
				"Run the tool's login command and try again.",
			},
		},
		docdrive.KindNotInstalled: {
			user: "The AI tool is not installed on this computer.",
			suggestions: []string{
				"Install the tool and make sure it is on your PATH.",
			},
		},
		docdrive.KindRateLimit: {
			user: "The AI service is limiting requests right now.",
			suggestions: []string{
				"Wait a few minutes and try again.",
				"Consider upgrading your plan if this happens often.",
			},
		},
		docdrive.KindQuotaExceeded: {
			user: "Your usage quota for the AI service is exhausted.",
			suggestions: []string{
				"Check your plan and billing with the AI service.",
			},
		},
		docdrive.KindContextLength: {
			user: "The document is too large for the AI model.",
			suggestions: []string{
				"Shorten the input or split the document into parts.",
			},
		},
		docdrive.KindNetwork: {
			user: "The AI tool could not reach its service.",
			suggestions: []string{
				"Check your internet connection.",
				"Try again in a moment.",
			},
		},
		docdrive.KindTimeout: {
			user: "The analysis took too long and was stopped.",
			suggestions: []string{
				"Try again with a smaller document.",
				"Increase the timeout in settings.",
			},
		},
		docdrive.KindModelOverloaded: {
			user: "The AI model is overloaded right now.",
			suggestions: []string{
				"Try again in a few minutes.",
			},
		},
		docdrive.KindProvider: {
			user: "The AI tool failed unexpectedly.",
		},
		docdrive.KindCancelled: {
			user: "The analysis was cancelled.",
		},
		docdrive.KindUnknown: {
			user: "Something went wrong.",
		},
	}
}

// Text is one kind's user-presentable messaging in some locale.
type Text struct {
	User        string
	Suggestions []string
}

// SetMessages replaces the message table, e.g. with a translated locale.
// Kinds missing from the new table fall back to empty text. Not safe to call
// concurrently with classification.
func SetMessages(t map[docdrive.Kind]Text) {
	m := make(messageTable, len(t))
	for k, v := range t {
		m[k] = messageSet{user: v.User, suggestions: v.Suggestions}
	}
	messages = m
}

// UserMessage returns the localized user text for kind.
func UserMessage(kind docdrive.Kind) string {
	return messages[kind].user
}

// Suggestions returns the ordered recovery suggestions for kind. The
// returned slice is a copy; callers may prepend tool-specific steps.
func Suggestions(kind docdrive.Kind) []string {
	src := messages[kind].suggestions
	if len(src) == 0 {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
