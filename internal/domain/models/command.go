package models

type CommandType string

const (
	CommandStart      CommandType = "/start"
	CommandHelp       CommandType = "/help"
	CommandStatus     CommandType = "/status"
	CommandSchedule   CommandType = "/schedule"
	CommandNotify     CommandType = "/notify"
	CommandSetChannel CommandType = "/set_channel"
	CommandUnknown    CommandType = "unknown"
)

func ParseCommandType(name string) CommandType {
	switch CommandType(name) {
	case CommandStart, CommandHelp, CommandStatus, CommandSchedule, CommandNotify, CommandSetChannel:
		return CommandType(name)
	default:
		return CommandUnknown
	}
}

// Callback payloads carried by menu buttons.
const (
	CallbackStatus        = "cmd_status"
	CallbackHelp          = "cmd_help"
	CallbackSchedule      = "cmd_schedule"
	CallbackNotifications = "cmd_notifications"
	CallbackSetChannel    = "cmd_set_channel"
)
