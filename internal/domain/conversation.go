package domain

// Turn roles. These match the roles the completion provider expects,
// so turns go onto the wire unchanged.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation. Histories are append-only;
// only a bounded suffix is ever sent to the provider.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// ChatReply is the success payload of POST /api/chat.
// FollowUps is always present, possibly empty, so the widget can iterate it.
type ChatReply struct {
	Reply     string   `json:"reply"`
	FollowUps []string `json:"followUps"`
}
