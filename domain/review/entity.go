package review

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's opinion of one product. The (product, user) pair is
// unique; reviews are hard-deleted so a user may review again later.
type Review struct {
	ID                 string    `gorm:"primarykey;size:36" json:"id"`
	ProductID          string    `gorm:"size:36;not null;uniqueIndex:idx_review_product_user;index" json:"product_id"`
	UserID             string    `gorm:"size:36;not null;uniqueIndex:idx_review_product_user" json:"user_id"`
	Rating             int       `gorm:"not null" json:"rating"`
	Title              string    `gorm:"size:100" json:"title"`
	Comment            string    `gorm:"type:text" json:"comment"`
	IsVerifiedPurchase bool      `gorm:"not null" json:"is_verified_purchase"`
	CreatedAt          time.Time `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName returns the table name for Review model.
func (Review) TableName() string {
	return "reviews"
}

// Aggregate is the derived rating of a product.
type Aggregate struct {
	Rating float64
	Count  int
}
