package order

import (
	"time"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known order status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the payment state of an order, independent of Status.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// PaymentMethod is stored as a label only.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentEWallet        PaymentMethod = "e_wallet"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentBankTransfer, PaymentEWallet, PaymentCashOnDelivery:
		return true
	}
	return false
}

// ShippingAddress is embedded into the orders table.
type ShippingAddress struct {
	Street   string `gorm:"size:255" json:"street"`
	City     string `gorm:"size:100" json:"city"`
	Province string `gorm:"size:100" json:"province"`
	ZipCode  string `gorm:"size:20" json:"zip_code"`
	Country  string `gorm:"size:100" json:"country"`
}

// Order is the immutable record of a checkout. Only Status and PaymentStatus
// change after creation.
type Order struct {
	ID              string          `gorm:"primarykey;size:36" json:"id"`
	OrderNumber     string          `gorm:"size:40;uniqueIndex;not null" json:"order_number"`
	UserID          string          `gorm:"size:36;index;not null" json:"user_id"`
	Items           []Item          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice      int64           `gorm:"not null" json:"total_price"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"size:32;not null" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"size:16;not null;index" json:"payment_status"`
	Status          Status          `gorm:"column:order_status;size:16;not null;index" json:"order_status"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName returns the table name for Order model.
func (Order) TableName() string {
	return "orders"
}

// Item is an owned snapshot of a purchased product at checkout time.
type Item struct {
	ID          uint   `gorm:"primarykey" json:"-"`
	OrderID     string `gorm:"size:36;index;not null" json:"-"`
	ProductID   string `gorm:"size:36;index;not null" json:"product_id"`
	ProductName string `gorm:"size:100;not null" json:"product_name"`
	Price       int64  `gorm:"not null" json:"price"`
	Quantity    int    `gorm:"not null" json:"quantity"`
}

// TableName returns the table name for Item model.
func (Item) TableName() string {
	return "order_items"
}

// Subtotal returns price × quantity for the line.
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status Status
	Offset int
	Limit  int
}

// Stats summarizes the order book.
type Stats struct {
	TotalOrders  int64 `json:"total_orders"`
	TotalRevenue int64 `json:"total_revenue"`
}
