package domain

type CommandKind int

const (
	// ChatCommand is any non-empty line that is not a recognised command.
	ChatCommand CommandKind = iota
	JoinCommand
	FileCommand
	QuitCommand
	// EmptyCommand is a blank line, ignored by sessions.
	EmptyCommand
)

func (k CommandKind) String() string {
	switch k {
	case ChatCommand:
		return "chat"
	case JoinCommand:
		return "/join"
	case FileCommand:
		return "/file"
	case QuitCommand:
		return "/quit"
	case EmptyCommand:
		return "empty"
	default:
		return "unknown"
	}
}

// Command is one classified line-mode line.
// Argument holds the room for /join, the file name for /file and the text for chat.
type Command struct {
	Kind     CommandKind
	Argument string
}
