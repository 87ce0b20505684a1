package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billfold/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	// Update rewrites customer_id, amount and status for the row matching
	// id. The date column is never touched.
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	// Delete removes the row matching id. Zero rows affected is not an
	// error.
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, query string, page pagination.Pagination) ([]*InvoiceRow, int64, error)
	Summary(ctx context.Context, db *gorm.DB) (Summary, error)
}
