package domain

// ClassifyRequest asks the provider to map a message to a scenario name.
type ClassifyRequest struct {
	// CatalogJSON is the raw scenario catalog embedded in the classifier prompt.
	CatalogJSON string

	// History is the bounded recent history rendered as a transcript.
	History []Turn

	// Message is the new user message being classified.
	Message string
}

// CompletionRequest carries everything needed to generate a reply.
// The gateway must put these on the wire in exactly this order: system prompt,
// last-scenario marker, history, then the new message, so the provider sees the
// conversation the same way on every turn.
type CompletionRequest struct {
	SystemPrompt string

	// LastScenario is the previously resolved scenario name, or empty on the
	// first exchange (rendered as "none").
	LastScenario string

	// History is the bounded recent history, oldest first.
	History []Turn

	// Message is the new user message.
	Message string
}
