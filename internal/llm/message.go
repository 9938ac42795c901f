package llm

type MessageRole string

const (
	Assistant MessageRole = "assistant"
	User      MessageRole = "user"
	System    MessageRole = "system"
)

type Message struct {
	Role    MessageRole
	Content string
}

func NewSystemMessage(content string) Message {
	return Message{Role: System, Content: content}
}
