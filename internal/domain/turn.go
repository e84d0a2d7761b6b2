package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

const (
	// PendingMarker is the content of the placeholder turn shown while a reply is awaited.
	PendingMarker = "Typing..."
	FallbackReply = "Sorry, I'm under maintenance right now. Please try again later!"
)

type Turn struct {
	Role    Role
	Content string
}

func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

func PendingTurn() Turn {
	return Turn{Role: RoleAssistant, Content: PendingMarker}
}

func FallbackTurn() Turn {
	return Turn{Role: RoleAssistant, Content: FallbackReply}
}

func (t Turn) IsPending() bool {
	return t.Role == RoleAssistant && t.Content == PendingMarker
}

func WelcomeTurn(name string) Turn {
	return AssistantTurn("Hi " + name + "! I'm your AI assistant. How can I help you today?")
}
