// Package domain contains persistence models and the form contract for
// invoices.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// DateOnly is a calendar date without a time component. It round-trips
// through a SQL date column and renders as YYYY-MM-DD in JSON.
type DateOnly time.Time

const dateOnlyLayout = "2006-01-02"

func NewDateOnly(t time.Time) DateOnly {
	t = t.UTC()
	return DateOnly(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

func (d DateOnly) Time() time.Time { return time.Time(d) }

func (d DateOnly) String() string { return time.Time(d).Format(dateOnlyLayout) }

func (d DateOnly) GormDataType() string { return "date" }

func (d DateOnly) Value() (driver.Value, error) {
	// Stored as YYYY-MM-DD text so every supported dialect keeps the
	// day-only precision.
	return d.String(), nil
}

func (d *DateOnly) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = NewDateOnly(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("unsupported date value %T", value)
	}
}

func (d *DateOnly) scanString(raw string) error {
	layouts := []string{
		dateOnlyLayout,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*d = NewDateOnly(parsed)
			return nil
		}
	}
	return fmt.Errorf("unsupported date value %q", raw)
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.scanString(raw)
}

// Invoice represents a billing record. Amount is stored as an integer
// number of cents.
type Invoice struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID  `gorm:"column:customer_id;not null;index" json:"customer_id"`
	AmountCents int64         `gorm:"column:amount;not null" json:"amount"`
	Status      InvoiceStatus `gorm:"type:text;not null" json:"status"`
	Date        DateOnly      `gorm:"column:date;not null" json:"date"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceRow is a listing row joined with the customer it bills.
type InvoiceRow struct {
	ID            snowflake.ID  `gorm:"column:id" json:"id"`
	CustomerID    snowflake.ID  `gorm:"column:customer_id" json:"customer_id"`
	AmountCents   int64         `gorm:"column:amount" json:"amount"`
	Status        InvoiceStatus `gorm:"column:status" json:"status"`
	Date          DateOnly      `gorm:"column:date" json:"date"`
	CustomerName  string        `gorm:"column:name" json:"customer_name"`
	CustomerEmail string        `gorm:"column:email" json:"customer_email"`
	ImageURL      string        `gorm:"column:image_url" json:"image_url,omitempty"`
}
