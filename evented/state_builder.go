// StateBuilder provides declarative event handler registration for state reconstruction.
//
// Replaces manual switch/case chains in rebuild functions.
// Mirrors CommandRouter's pattern of registering handlers by type suffix.
package evented

import (
	"strings"

	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// StateApplier applies a decoded event payload to state.
type StateApplier[S any] func(state *S, payload *structpb.Struct)

type applierEntry[S any] struct {
	suffix string
	apply  StateApplier[S]
}

// StateBuilder builds state from events with registered handlers.
//
// Example:
//
//	builder := evented.NewStateBuilder(func() Cart { return Cart{} }).
//	    On("ItemAdded", applyItemAdded).
//	    On("CartCleared", applyCartCleared)
//
//	func RebuildState(book *evented.EventBook) Cart {
//	    return builder.Rebuild(book)
//	}
type StateBuilder[S any] struct {
	newState func() S
	appliers []applierEntry[S]
}

// NewStateBuilder creates a StateBuilder for state type S.
//
// The newState function creates a default/zero state.
func NewStateBuilder[S any](newState func() S) *StateBuilder[S] {
	return &StateBuilder[S]{
		newState: newState,
		appliers: make([]applierEntry[S], 0),
	}
}

// On registers an event applier for a type_url suffix.
func (sb *StateBuilder[S]) On(typeSuffix string, apply StateApplier[S]) *StateBuilder[S] {
	sb.appliers = append(sb.appliers, applierEntry[S]{
		suffix: typeSuffix,
		apply:  apply,
	})
	return sb
}

// Apply applies a single packed event to state using registered handlers.
//
// Unknown event types and undecodable payloads are ignored.
func (sb *StateBuilder[S]) Apply(state *S, event *anypb.Any) {
	if event == nil {
		return
	}
	applier := sb.find(event.TypeUrl)
	if applier == nil {
		return
	}
	payload, err := UnpackPayload(event)
	if err != nil {
		return
	}
	applier(state, payload)
}

// Rebuild reconstructs state from an EventBook.
//
// Unknown event types are silently ignored.
func (sb *StateBuilder[S]) Rebuild(eventBook *EventBook) S {
	state := sb.newState()

	if eventBook == nil {
		return state
	}

	for _, page := range eventBook.Pages {
		if page == nil || page.Event == nil {
			continue
		}
		sb.Apply(&state, page.Event)
	}

	return state
}

func (sb *StateBuilder[S]) find(typeURL string) StateApplier[S] {
	for _, applier := range sb.appliers {
		if strings.HasSuffix(typeURL, applier.suffix) {
			return applier.apply
		}
	}
	return nil
}
