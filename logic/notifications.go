package logic

// NotificationKind names a user-facing message the engine asks to show.
type NotificationKind string

const (
	NotificationAdded   NotificationKind = "added"
	NotificationCleared NotificationKind = "cleared"
)

// Notification is an intent for the toast collaborator. The engine only
// emits it; rendering is up to the caller.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	ProductName string           `json:"product_name,omitempty"`
}

// Title is the storefront's headline for the notification.
func (n Notification) Title() string {
	switch n.Kind {
	case NotificationAdded:
		return "Добавлено в корзину"
	case NotificationCleared:
		return "Корзина очищена"
	default:
		return ""
	}
}

// Description is the secondary line; only "added" has one.
func (n Notification) Description() string {
	if n.Kind == NotificationAdded {
		return n.ProductName
	}
	return ""
}

func addedNotification(productName string) Notification {
	return Notification{Kind: NotificationAdded, ProductName: productName}
}

func clearedNotification() Notification {
	return Notification{Kind: NotificationCleared}
}
