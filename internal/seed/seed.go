// Package seed bootstraps the first admin account and optional demo
// data for local and self-hosted installs.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/billfold/internal/auth/domain"
	"github.com/smallbiznis/billfold/internal/auth/password"
	customerdomain "github.com/smallbiznis/billfold/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billfold/internal/invoice/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@billfold.local"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "Billfold Admin"
)

// EnsureAdmin creates the bootstrap admin user if it does not exist.
// Explicit credentials take precedence over the built-in defaults.
func EnsureAdmin(db *gorm.DB, email, rawPassword string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = defaultAdminEmail
	}
	if rawPassword == "" {
		rawPassword = defaultAdminPassword
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(rawPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			Email:        email,
			DisplayName:  defaultAdminDisplay,
			PasswordHash: &hashed,
			Metadata:     datatypes.JSONMap{"bootstrap": true},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}

type demoCustomer struct {
	name     string
	email    string
	imageURL string
	invoices []demoInvoice
}

type demoInvoice struct {
	amountCents int64
	status      invoicedomain.InvoiceStatus
	daysAgo     int
}

var demoCustomers = []demoCustomer{
	{
		name:     "Evil Rabbit",
		email:    "evil@rabbit.com",
		imageURL: "/customers/evil-rabbit.png",
		invoices: []demoInvoice{
			{amountCents: 15795, status: invoicedomain.InvoiceStatusPending, daysAgo: 2},
			{amountCents: 66666, status: invoicedomain.InvoiceStatusPending, daysAgo: 35},
		},
	},
	{
		name:     "Delba de Oliveira",
		email:    "delba@oliveira.com",
		imageURL: "/customers/delba-de-oliveira.png",
		invoices: []demoInvoice{
			{amountCents: 20348, status: invoicedomain.InvoiceStatusPending, daysAgo: 9},
			{amountCents: 32545, status: invoicedomain.InvoiceStatusPaid, daysAgo: 60},
		},
	},
	{
		name:     "Lee Robinson",
		email:    "lee@robinson.com",
		imageURL: "/customers/lee-robinson.png",
		invoices: []demoInvoice{
			{amountCents: 3040, status: invoicedomain.InvoiceStatusPaid, daysAgo: 14},
			{amountCents: 54246, status: invoicedomain.InvoiceStatusPending, daysAgo: 80},
		},
	},
	{
		name:     "Michael Novotny",
		email:    "michael@novotny.com",
		imageURL: "/customers/michael-novotny.png",
		invoices: []demoInvoice{
			{amountCents: 44800, status: invoicedomain.InvoiceStatusPaid, daysAgo: 20},
			{amountCents: 8945, status: invoicedomain.InvoiceStatusPaid, daysAgo: 110},
		},
	},
	{
		name:     "Amy Burns",
		email:    "amy@burns.com",
		imageURL: "/customers/amy-burns.png",
		invoices: []demoInvoice{
			{amountCents: 34577, status: invoicedomain.InvoiceStatusPending, daysAgo: 28},
		},
	},
	{
		name:     "Balazs Orban",
		email:    "balazs@orban.com",
		imageURL: "/customers/balazs-orban.png",
		invoices: []demoInvoice{
			{amountCents: 54246, status: invoicedomain.InvoiceStatusPending, daysAgo: 45},
			{amountCents: 1000, status: invoicedomain.InvoiceStatusPaid, daysAgo: 125},
		},
	},
}

// EnsureDemoData seeds sample customers and invoices. It is a no-op when
// the customers table already has rows.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&customerdomain.Customer{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, dc := range demoCustomers {
			customer := customerdomain.Customer{
				ID:        node.Generate(),
				Name:      dc.name,
				Email:     dc.email,
				ImageURL:  dc.imageURL,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
				return err
			}

			for _, di := range dc.invoices {
				invoice := invoicedomain.Invoice{
					ID:          node.Generate(),
					CustomerID:  customer.ID,
					AmountCents: di.amountCents,
					Status:      di.status,
					Date:        invoicedomain.NewDateOnly(now.AddDate(0, 0, -di.daysAgo)),
				}
				if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
