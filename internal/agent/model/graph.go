package model

// AppState stores per-invocation state for the Eino graph.
// Concurrency model:
//   - Registered as graph local state via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers
//     (WithStatePreHandler, WithStatePostHandler, or compose.ProcessState),
//     which Eino serializes, so no extra locking is needed.
//   - Nothing in the state survives the turn; cross-turn persistence goes
//     through the repositories.
type AppState struct {
	SessionID string
	UserInput string

	// History is the transcript loaded at the start of the turn, before the
	// inbound user turn was appended. The current utterance therefore appears
	// exactly once in every prompt, as the explicit user message.
	History []ChatTurn

	Summary     string      // rolling summary, best-effort
	Preferences Preferences // inferred preferences, best-effort

	Selection *ToolSelection // set by the selector node
	Outcome   *ToolOutcome   // set by the dispatched tool node

	// Accumulated LLM cost (USD) across model invocations for this turn.
	TotalCostUSD float64
}

// QueryInput is the public input for one conversational turn.
type QueryInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}
