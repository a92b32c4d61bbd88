package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/logic"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/session"
)

// maxExactInt is the largest magnitude a Struct number holds exactly.
const maxExactInt = 1 << 53

type itemView struct {
	catalog.Product
	Quantity int32 `json:"quantity"`
	Subtotal int64 `json:"subtotal"`
}

type cartView struct {
	SessionID string     `json:"session_id"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []itemView `json:"items"`
	Total     int64      `json:"total"`
	ItemCount int64      `json:"item_count"`
	Lines     int        `json:"lines"`
	Empty     bool       `json:"empty"`
}

type notificationView struct {
	Kind        logic.NotificationKind `json:"kind"`
	ProductName string                 `json:"product_name,omitempty"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
}

type outcomeView struct {
	Cart          cartView           `json:"cart"`
	Events        []string           `json:"events"`
	Notifications []notificationView `json:"notifications"`
}

type historyPageView struct {
	Sequence  uint32         `json:"sequence"`
	Event     string         `json:"event"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}

type historyView struct {
	SessionID string            `json:"session_id"`
	Root      string            `json:"root"`
	Pages     []historyPageView `json:"pages"`
	Replayed  cartView          `json:"replayed"`
}

type productsView struct {
	Products []catalog.Product `json:"products"`
}

type errorView struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newCartView(sess *session.Session, cart logic.Cart) cartView {
	items := make([]itemView, 0, cart.Len())
	for _, item := range cart.Items() {
		items = append(items, itemView{Product: item.Product, Quantity: item.Quantity, Subtotal: item.Subtotal()})
	}
	return cartView{
		SessionID: sess.ID(),
		CreatedAt: sess.CreatedAt(),
		Items:     items,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
		Lines:     cart.Len(),
		Empty:     cart.IsEmpty(),
	}
}

func newOutcomeView(sess *session.Session, outcome logic.Outcome) outcomeView {
	events := make([]string, 0, len(outcome.Events))
	for _, event := range outcome.Events {
		events = append(events, event.EventType())
	}
	notifications := make([]notificationView, 0, len(outcome.Notifications))
	for _, n := range outcome.Notifications {
		notifications = append(notifications, notificationView{
			Kind:        n.Kind,
			ProductName: n.ProductName,
			Title:       n.Title(),
			Description: n.Description(),
		})
	}
	return outcomeView{
		Cart:          newCartView(sess, outcome.Cart),
		Events:        events,
		Notifications: notifications,
	}
}

func newHistoryView(sess *session.Session, book *evented.EventBook, replayed logic.Cart) (historyView, error) {
	pages := make([]historyPageView, 0, len(book.Pages))
	for _, page := range book.Pages {
		payload, err := evented.UnpackPayload(page.Event)
		if err != nil {
			return historyView{}, err
		}
		pages = append(pages, historyPageView{
			Sequence:  page.Sequence,
			Event:     evented.TypeName(page.Event.GetTypeUrl()),
			CreatedAt: page.CreatedAt.AsTime(),
			Payload:   payload.AsMap(),
		})
	}
	return historyView{
		SessionID: sess.ID(),
		Root:      book.Cover.Root.String(),
		Pages:     pages,
		Replayed:  newCartView(sess, replayed),
	}, nil
}

func newProductsView(cat *catalog.Catalog) productsView {
	return productsView{Products: cat.Products()}
}

// toStruct converts a JSON-tagged view into the Struct carried over gRPC,
// so both transports share one field layout.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode view: %w", err)
	}
	return decodeStruct(bytes.NewReader(data))
}

// decodeStruct reads a JSON object into a Struct. Integers a Struct
// number cannot hold exactly are kept as decimal strings.
func decodeStruct(r io.Reader) (*structpb.Struct, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	fields := make(map[string]*structpb.Value, len(raw))
	for k, v := range raw {
		value, err := structValue(v)
		if err != nil {
			return nil, err
		}
		fields[k] = value
	}
	return &structpb.Struct{Fields: fields}, nil
}

func structValue(v any) (*structpb.Value, error) {
	switch v := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			if n > maxExactInt || n < -maxExactInt {
				return structpb.NewStringValue(string(v)), nil
			}
			return structpb.NewNumberValue(float64(n)), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return structpb.NewNumberValue(f), nil
	case map[string]any:
		fields := make(map[string]*structpb.Value, len(v))
		for k, item := range v {
			value, err := structValue(item)
			if err != nil {
				return nil, err
			}
			fields[k] = value
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	case []any:
		values := make([]*structpb.Value, 0, len(v))
		for _, item := range v {
			value, err := structValue(item)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	default:
		return structpb.NewValue(v)
	}
}
