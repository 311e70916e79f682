package chat

// History is the bounded window of prior user/assistant messages.
// It never holds the system message.
type History struct {
	messages []Message
	limit    int
}

// NewHistory creates an empty history that retains at most limit entries.
// A limit of zero or less retains nothing.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{messages: []Message{}, limit: limit}
}

// AppendTurn records one completed turn, user first then assistant, and
// drops the oldest entries until at most Limit remain.
func (h *History) AppendTurn(user, assistant Message) {
	h.messages = append(h.messages, user, assistant)
	h.trim()
}

func (h *History) trim() {
	if len(h.messages) <= h.limit {
		return
	}
	kept := make([]Message, h.limit)
	copy(kept, h.messages[len(h.messages)-h.limit:])
	h.messages = kept
}

// Messages returns a copy of the retained messages, oldest first.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	return len(h.messages)
}

// Limit returns the configured maximum length.
func (h *History) Limit() int {
	return h.limit
}

// Clear drops every retained message.
func (h *History) Clear() {
	h.messages = []Message{}
}
