package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	Search string
	Page   int
	Limit  int
}

type CreateRequest struct {
	SKU            string         `json:"sku"`
	Name           string         `json:"name"`
	Description    *string        `json:"description"`
	BasePriceCents int64          `json:"base_price_cents"`
	Active         *bool          `json:"active"`
	Metadata       map[string]any `json:"metadata"`
}

type Response struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	SKU            string         `json:"sku"`
	Name           string         `json:"name"`
	Description    *string        `json:"description,omitempty"`
	BasePriceCents int64          `json:"base_price_cents"`
	Active         bool           `json:"active"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ListResponse struct {
	Products   []Response `json:"products"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidSKU          = errors.New("invalid_sku")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidBasePrice    = errors.New("invalid_base_price")
	ErrInvalidID           = errors.New("invalid_id")
	ErrDuplicateSKU        = errors.New("duplicate_sku")
	ErrNotFound            = errors.New("not_found")
)
