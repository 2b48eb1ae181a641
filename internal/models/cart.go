package models

// Product is a cart line-item: catalog data plus the quantity held in the cart.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Amount   int     `json:"amount"`
}

// Cart is ordered by insertion and holds at most one entry per product ID.
type Cart []Product

// Find returns the index of the line-item for productID, or -1.
func (c Cart) Find(productID int) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// StockRecord is the stock service's view of one product.
type StockRecord struct {
	ProductID int `json:"id"`
	Amount    int `json:"amount"`
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a user-facing message produced by a cart operation.
type Notification struct {
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Operation string           `json:"operation,omitempty"`
	ProductID int              `json:"product_id,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
}
