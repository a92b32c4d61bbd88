package evented

import (
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// Error message constants.
const (
	ErrMsgUnknownCommand = "unknown command type"
	ErrMsgNoCommand      = "command is required"
)

// CommandHandler processes a command's arguments against the current state.
type CommandHandler[S, R any] func(state S, args *structpb.Struct) (R, error)

type commandEntry[S, R any] struct {
	suffix  string
	handler CommandHandler[S, R]
}

// CommandRouter dispatches commands to handlers by command name suffix.
//
// Replaces manual switch/case dispatch in transport handlers.
//
// Example:
//
//	router := evented.NewCommandRouter[*session.Session, logic.Outcome]("cart").
//	    On("AddItem", handleAddItem).
//	    On("ClearCart", handleClearCart)
//
//	outcome, err := router.Dispatch("AddItem", sess, args)
type CommandRouter[S, R any] struct {
	domain  string
	entries []commandEntry[S, R]
}

// NewCommandRouter creates a command router for a domain.
func NewCommandRouter[S, R any](domain string) *CommandRouter[S, R] {
	return &CommandRouter[S, R]{domain: domain}
}

// On registers a handler for a command name suffix.
//
// The suffix is matched against the end of the command name, so both
// "AddItem" and "storefront.AddItem" reach the same handler.
func (r *CommandRouter[S, R]) On(suffix string, handler CommandHandler[S, R]) *CommandRouter[S, R] {
	r.entries = append(r.entries, commandEntry[S, R]{suffix, handler})
	return r
}

// Dispatch matches the command name and calls its handler.
func (r *CommandRouter[S, R]) Dispatch(command string, state S, args *structpb.Struct) (R, error) {
	var zero R
	if command == "" {
		return zero, NewInvalidArgument(ErrMsgNoCommand)
	}
	if args == nil {
		args = &structpb.Struct{}
	}

	for _, e := range r.entries {
		if strings.HasSuffix(command, e.suffix) {
			return e.handler(state, args)
		}
	}

	return zero, NewInvalidArgumentf("%s: %s", ErrMsgUnknownCommand, command)
}

// Domain returns the aggregate domain name.
func (r *CommandRouter[S, R]) Domain() string { return r.domain }

// Types returns registered command name suffixes.
func (r *CommandRouter[S, R]) Types() []string {
	result := make([]string, len(r.entries))
	for i, e := range r.entries {
		result[i] = e.suffix
	}
	return result
}
