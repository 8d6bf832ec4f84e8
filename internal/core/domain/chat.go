package domain

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message in a conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatAnswer is a generated reply with the sources it was grounded on.
type ChatAnswer struct {
	// Answer is the generated text.
	Answer string `json:"answer"`

	// Sources are the citations used as context. Empty when ungrounded.
	Sources []Citation `json:"sources"`

	// Grounded is true if retrieved context was supplied to the model.
	Grounded bool `json:"grounded"`
}
