package review

import (
	domain "github.com/example/beverage-storefront/domain/review"
)

// CreateReviewRequest adds the caller's review of a product.
type CreateReviewRequest struct {
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

// UpdateReviewRequest changes the provided fields of the caller's review.
type UpdateReviewRequest struct {
	ReviewID string  `json:"review_id"`
	UserID   string  `json:"user_id"`
	Rating   *int    `json:"rating,omitempty"`
	Title    *string `json:"title,omitempty"`
	Comment  *string `json:"comment,omitempty"`
}

// DeleteReviewRequest removes the caller's review.
type DeleteReviewRequest struct {
	ReviewID string `json:"review_id"`
	UserID   string `json:"user_id"`
}

// DeleteReviewResponse reports the product rating after the removal.
type DeleteReviewResponse struct {
	Deleted     bool    `json:"deleted"`
	ProductID   string  `json:"product_id"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// ListReviewsRequest pages through a product's reviews.
type ListReviewsRequest struct {
	ProductID string `json:"product_id"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// ListReviewsResponse is one page of reviews, newest first.
type ListReviewsResponse struct {
	Reviews    []domain.Review `json:"reviews"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// Result is a review mutation together with the recomputed product rating.
type Result struct {
	Review      domain.Review `json:"review"`
	Rating      float64       `json:"rating"`
	ReviewCount int           `json:"review_count"`
}
