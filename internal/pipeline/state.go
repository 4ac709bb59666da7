package pipeline

// HistoryMessage is the projection of a stored message handed to the model:
// transport-only fields (timestamps) are stripped by the orchestrator before
// the pipeline ever sees them.
type HistoryMessage struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Sender string `json:"sender"`
	UserID int64  `json:"user_id"`
}

// Consistency is the grading verdict for a drafted reply. Reason is set only
// when Status is false.
type Consistency struct {
	Status bool   `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// State is the conversation record threaded through the stages. It exists
// for exactly one run; only the final reply text outlives it, as a stored
// message.
type State struct {
	History       []HistoryMessage
	LatestMessage string
	UserName      string

	// filled by Classify
	Category     string
	DerivedQuery string

	// filled by ValidateContext
	RetrievedContext string
	ClarityStatus    string

	// filled by the generation stages
	DraftReply     string
	FormattedReply string
	Consistency    Consistency
}

// NoContextSentinel stands in for an empty retrieval so downstream stages
// always receive a defined context string.
const NoContextSentinel = "No context available"

// Result is what the pipeline surfaces to the orchestrator. Reply carries
// the pre-format draft; the formatted variant is computed but intentionally
// not the one returned.
type Result struct {
	Category      string
	Reply         string
	ClarityStatus string
}
