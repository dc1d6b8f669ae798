package constant

const (
	// ChunkSourceWiki tags chunks whose text came from the Wikipedia
	// acquisition collaborator.
	ChunkSourceWiki = "wiki"

	// HistoryUserPrefix and HistoryBotPrefix frame the turn strings appended
	// to the caller-owned conversation history.
	HistoryUserPrefix = "User: "
	HistoryBotPrefix  = "Bot: "

	// EmptyHistoryPlaceholder stands in for the history block when the
	// conversation has no prior turns.
	EmptyHistoryPlaceholder = "No previous conversation."

	// CompressPromptPrefix asks the generative model for a one-line summary
	// suitable for the compacted history.
	CompressPromptPrefix = "Summarize this response in one short sentence: "
)
