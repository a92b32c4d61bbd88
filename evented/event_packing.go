package evented

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// TypeURLPrefix is the shared prefix for all storefront event type URLs.
const TypeURLPrefix = "type.storefront/storefront."

// Event is a domain event that can be carried in an EventBook.
//
// The payload is a protobuf Struct so events travel over the wire and
// rebuild state without generated message types.
type Event interface {
	EventType() string
	Payload() (*structpb.Struct, error)
}

// Cover identifies the aggregate an EventBook belongs to.
type Cover struct {
	Domain string
	Root   uuid.UUID
}

// EventPage is a single sequenced event.
type EventPage struct {
	Sequence  uint32
	Event     *anypb.Any
	CreatedAt *timestamppb.Timestamp
}

// EventBook is the ordered event history of one aggregate.
type EventBook struct {
	Cover Cover
	Pages []*EventPage
}

// TypeURL builds the full type URL for an event type name.
// Example: TypeURL("ItemAdded") returns "type.storefront/storefront.ItemAdded"
func TypeURL(eventType string) string {
	return TypeURLPrefix + eventType
}

// TypeName extracts the short event type name from a type URL.
func TypeName(typeURL string) string {
	if idx := strings.LastIndex(typeURL, "."); idx >= 0 {
		return typeURL[idx+1:]
	}
	return typeURL
}

// PackEvent wraps a single event into a sequenced EventPage.
func PackEvent(event Event, seq uint32) (*EventPage, error) {
	eventAny, err := MarshalEvent(event)
	if err != nil {
		return nil, err
	}
	return &EventPage{
		Sequence:  seq,
		Event:     eventAny,
		CreatedAt: timestamppb.Now(),
	}, nil
}

// MarshalEvent encodes an event as an Any whose type URL names the event.
func MarshalEvent(event Event) (*anypb.Any, error) {
	payload, err := event.Payload()
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event.EventType(), err)
	}
	value, err := proto.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}
	return &anypb.Any{TypeUrl: TypeURL(event.EventType()), Value: value}, nil
}

// UnpackPayload decodes the Struct payload carried by an event Any.
func UnpackPayload(event *anypb.Any) (*structpb.Struct, error) {
	payload := &structpb.Struct{}
	if err := proto.Unmarshal(event.GetValue(), payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", TypeName(event.GetTypeUrl()), err)
	}
	return payload, nil
}

// NewEventBook creates an empty EventBook for an aggregate.
func NewEventBook(cover Cover) *EventBook {
	return &EventBook{Cover: cover}
}

// Pack builds sequenced pages for events without adding them to the book.
func (b *EventBook) Pack(events ...Event) ([]*EventPage, error) {
	seq := NextSequence(b)
	pages := make([]*EventPage, 0, len(events))
	for i, event := range events {
		page, err := PackEvent(event, seq+uint32(i))
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// Append packs events onto the end of the book with sequential numbering.
// Nothing is appended if any event fails to pack.
func (b *EventBook) Append(events ...Event) error {
	pages, err := b.Pack(events...)
	if err != nil {
		return err
	}
	b.Pages = append(b.Pages, pages...)
	return nil
}

// Clone returns a copy of the book whose page slice can be appended to
// without affecting the original.
func (b *EventBook) Clone() *EventBook {
	if b == nil {
		return nil
	}
	pages := make([]*EventPage, len(b.Pages))
	copy(pages, b.Pages)
	return &EventBook{Cover: b.Cover, Pages: pages}
}

// NextSequence computes the next event sequence number from prior events.
// It follows the last page, so numbering continues after a book has been
// compacted.
func NextSequence(events *EventBook) uint32 {
	if events == nil || len(events.Pages) == 0 {
		return 0
	}
	last := events.Pages[len(events.Pages)-1]
	if last == nil {
		return uint32(len(events.Pages))
	}
	return last.Sequence + 1
}
