package fsm

import "fmt"

type State string

type Event string

// Dispatcher states: AwaitingCommand loops until the exit command is
// processed. Client states: Prompting alternates with AwaitingResponse.
// Stopped is terminal for both roles.
const (
	StateAwaitingCommand  State = "awaiting_command"
	StatePrompting        State = "prompting"
	StateAwaitingResponse State = "awaiting_response"
	StateStopped          State = "stopped"
)

const (
	EventRespond Event = "respond"
	EventSend    Event = "send"
	EventReceive Event = "receive"
	EventExit    Event = "exit"
	EventEOF     Event = "eof"
)

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateAwaitingCommand:
		switch event {
		case EventRespond:
			return StateAwaitingCommand, nil
		case EventExit:
			return StateStopped, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StatePrompting:
		switch event {
		case EventSend:
			return StateAwaitingResponse, nil
		case EventEOF:
			return StateStopped, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateAwaitingResponse:
		switch event {
		case EventReceive:
			return StatePrompting, nil
		case EventExit:
			return StateStopped, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopped:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
