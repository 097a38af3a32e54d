package cart

import (
	"time"
)

// Cart is a user's working set of intended purchases. There is exactly one
// cart per user; it is created on first access and emptied, not deleted, by
// checkout.
type Cart struct {
	ID         string    `gorm:"primarykey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	Items      []Item    `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice int64     `gorm:"not null;default:0" json:"total_price"`
	Version    int       `gorm:"not null;default:0" json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for Cart model.
func (Cart) TableName() string {
	return "carts"
}

// Item is one product line in a cart. Items keep a live reference to the
// product; prices are read from the catalog whenever the total is computed.
type Item struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CartID    string    `gorm:"size:36;not null;uniqueIndex:idx_cart_item_product" json:"-"`
	ProductID string    `gorm:"size:36;not null;uniqueIndex:idx_cart_item_product" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"added_at"`
}

// TableName returns the table name for Item model.
func (Item) TableName() string {
	return "cart_items"
}

// AddItem adds qty units of a product, merging into an existing line.
func (c *Cart) AddItem(productID string, qty int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			return
		}
	}
	c.Items = append(c.Items, Item{
		CartID:    c.ID,
		ProductID: productID,
		Quantity:  qty,
	})
}

// SetQuantity overwrites the quantity of an existing line. A quantity of zero
// removes the line. It returns false when the product is not in the cart.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if qty == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = qty
		}
		return true
	}
	return false
}

// RemoveItem drops the line for a product. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID string) {
	c.SetQuantity(productID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = c.Items[:0]
	c.TotalPrice = 0
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ProductIDs returns the referenced product IDs in line order.
func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Recalculate sets TotalPrice from the given current unit prices. Lines whose
// product has no price contribute nothing.
func (c *Cart) Recalculate(prices map[string]int64) {
	var total int64
	for _, item := range c.Items {
		total += prices[item.ProductID] * int64(item.Quantity)
	}
	c.TotalPrice = total
}
