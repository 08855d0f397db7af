package model

// ================ Config ================

// SelectorModelConfig drives the tool-selection model. Temperature stays low
// so the capability choice is near-deterministic.
type SelectorModelConfig struct {
	Model       string  `envconfig:"SELECTOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"SELECTOR_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"SELECTOR_TEMPERATURE" default:"0.1"`
}

// ResponseModelConfig drives final answer generation; phrasing freedom is
// acceptable there, so the default temperature is higher.
type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.7"`
}

// UtilityModelConfig drives auxiliary generation: rolling summaries,
// preference extraction, topic extraction and document analysis.
type UtilityModelConfig struct {
	Model       string  `envconfig:"UTILITY_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"UTILITY_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"UTILITY_TEMPERATURE" default:"0.3"`
}

// EmbeddingConfig configures query embedding generation for vector search.
type EmbeddingConfig struct {
	Model      string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	Dimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"3072"`
}

// MemoryConfig tunes how much context each turn consumes.
type MemoryConfig struct {
	// SelectorMaxTurns caps the recent history passed to the selector.
	SelectorMaxTurns int `envconfig:"MEMORY_SELECTOR_MAX_TURNS" default:"5"`
	// SummaryMaxTurns caps the tail summarized into the rolling summary.
	SummaryMaxTurns int `envconfig:"MEMORY_SUMMARY_MAX_TURNS" default:"10"`
	// Backend selects the record-log store: mongo, redis or memory.
	Backend string `envconfig:"MEMORY_BACKEND" default:"mongo"`
}

// RetrievalConfig tunes corpus search.
type RetrievalConfig struct {
	Limit int `envconfig:"RETRIEVAL_LIMIT" default:"5"`
}
