package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/billfold/pkg/db/pagination"
)

// ListingPath is the logical route the customer pages are cached under.
const ListingPath = "/dashboard/customers"

type ListCustomerRequest struct {
	// Query is the free-text search term synced into the URL by the
	// dashboard search box.
	Query string
	Page  pagination.Pagination
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name     string
	Email    string
	ImageURL string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
