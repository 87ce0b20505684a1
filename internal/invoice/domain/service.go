package domain

import (
	"context"
	"errors"
	"net/url"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billfold/pkg/db/pagination"
)

// ListingPath is the logical route invalidated after a successful mutation.
const ListingPath = "/dashboard/invoices"

// User-facing mutation messages.
const (
	MsgCreateMissingFields = "Missing Fields. Failed to Create Invoice."
	MsgUpdateMissingFields = "Missing Fields."
	MsgCreateFailed        = "Database Error: Failed to create invoice."
	MsgUpdateFailed        = "Database Error: Failed to update invoice."
	MsgDeleteFailed        = "Database Error: Failed to Delete Invoice"
	MsgDeleted             = "Deleted Invoice"
)

// Outcome is the terminal result of a mutation. Exactly one of the
// variants applies: a redirect to a route, structured field errors, or a
// bare message (delete confirmation or a swallowed storage failure).
type Outcome struct {
	RedirectTo    string      `json:"-"`
	Message       string      `json:"message,omitempty"`
	Errors        FieldErrors `json:"errors,omitempty"`
	StorageFailed bool        `json:"-"`
}

// Redirected reports whether the mutation ended by leaving the page.
func (o Outcome) Redirected() bool { return o.RedirectTo != "" }

type ListInvoiceRequest struct {
	// Query matches against customer name, customer email and status.
	Query string
	Page  pagination.Pagination
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []InvoiceRow `json:"invoices"`
}

// Summary backs the dashboard cards.
type Summary struct {
	InvoiceCount  int64 `json:"invoice_count"`
	CustomerCount int64 `json:"customer_count"`
	PaidCents     int64 `json:"paid"`
	PendingCents  int64 `json:"pending"`
}

type Service interface {
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	Summary(ctx context.Context) (Summary, error)

	// Create validates the raw form, persists a new invoice dated today
	// (UTC) and redirects to the listing. Update re-validates with the
	// same schema and rewrites customer/amount/status for the given id,
	// leaving id and date untouched. Delete removes the row and reports
	// a confirmation message in place of a redirect.
	Create(ctx context.Context, form url.Values) Outcome
	Update(ctx context.Context, id snowflake.ID, form url.Values) Outcome
	Delete(ctx context.Context, id snowflake.ID) Outcome
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
