package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Quote(ctx context.Context, priceListID string, req Request) (*Response, error)
}

type Request struct {
	ProductID       string     `json:"product_id"`
	BaseAmountCents *int64     `json:"base_amount_cents"`
	Quantity        int64      `json:"quantity"`
	CustomerType    string     `json:"customer_type"`
	At              *time.Time `json:"at"`
}

type Response struct {
	PriceListID         string   `json:"price_list_id"`
	ProductID           string   `json:"product_id,omitempty"`
	Currency            string   `json:"currency"`
	BaseAmountCents     int64    `json:"base_amount_cents"`
	FinalAmountCents    int64    `json:"final_amount_cents"`
	AppliedConditionIDs []string `json:"applied_condition_ids"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidPriceList    = errors.New("invalid_price_list")
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidBaseAmount   = errors.New("invalid_base_amount")
	ErrInvalidDiscountType = errors.New("invalid_discount_type")
	ErrNotFound            = errors.New("not_found")
)
