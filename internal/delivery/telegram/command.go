package telegram

import "fmt"

// Command is the closed set of slash commands the bot understands.
type Command int

const (
	CommandStart Command = iota
	CommandHelp
	CommandStatus
	CommandPerformance
	CommandSignals
	CommandTrades
	CommandSettings
	CommandGenerate
)

func AllCommands() []Command {
	return []Command{
		CommandStart,
		CommandHelp,
		CommandStatus,
		CommandPerformance,
		CommandSignals,
		CommandTrades,
		CommandSettings,
		CommandGenerate,
	}
}

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandHelp:
		return "help"
	case CommandStatus:
		return "status"
	case CommandPerformance:
		return "performance"
	case CommandSignals:
		return "signals"
	case CommandTrades:
		return "trades"
	case CommandSettings:
		return "settings"
	case CommandGenerate:
		return "generate"
	}
	return fmt.Sprintf("command(%d)", int(c))
}

func (c Command) Endpoint() string {
	return "/" + c.String()
}

// InteractionType is the value stored in user_interactions.interaction_type.
func (c Command) InteractionType() string {
	if c == CommandGenerate {
		return "generate_signal_command"
	}
	return c.String() + "_command"
}

func (c Command) Description() string {
	switch c {
	case CommandStart:
		return "Welcome message"
	case CommandHelp:
		return "List all commands"
	case CommandStatus:
		return "Bot status and health"
	case CommandPerformance:
		return "Performance metrics"
	case CommandSignals:
		return "Recent signals"
	case CommandTrades:
		return "Trade history"
	case CommandSettings:
		return "Bot configuration"
	case CommandGenerate:
		return "Force generate a signal"
	}
	return ""
}

const (
	interactionCallback = "callback_query"
	interactionText     = "text_message"
)
