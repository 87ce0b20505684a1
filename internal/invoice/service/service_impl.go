package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billfold/internal/invoice/domain"
	"github.com/smallbiznis/billfold/internal/pagecache"
	"github.com/smallbiznis/billfold/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Cache  pagecache.Cache
	Schema *domain.FormSchema
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	cache  pagecache.Cache
	schema *domain.FormSchema
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("invoice.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		cache:  p.Cache,
		schema: p.Schema,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	page := req.Page.Normalize(6)

	items, total, err := s.repo.List(ctx, s.db, strings.TrimSpace(req.Query), page)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	rows := make([]domain.InvoiceRow, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rows = append(rows, *item)
	}

	return domain.ListInvoiceResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Invoices: rows,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	return s.repo.Summary(ctx, s.db)
}

func (s *Service) Create(ctx context.Context, form url.Values) domain.Outcome {
	parsed, errs := s.schema.Parse(form)
	if len(errs) > 0 {
		return domain.Outcome{Errors: errs, Message: domain.MsgCreateMissingFields}
	}

	customerID, err := snowflake.ParseString(parsed.CustomerID)
	if err != nil {
		errs = domain.FieldErrors{domain.FieldCustomerID: {domain.MsgSelectCustomer}}
		return domain.Outcome{Errors: errs, Message: domain.MsgCreateMissingFields}
	}

	invoice := domain.Invoice{
		ID:          s.genID.Generate(),
		CustomerID:  customerID,
		AmountCents: parsed.AmountCents(),
		Status:      domain.InvoiceStatus(parsed.Status),
		Date:        domain.NewDateOnly(time.Now()),
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		s.log.Error("create invoice failed", zap.Error(err))
		return domain.Outcome{Message: domain.MsgCreateFailed, StorageFailed: true}
	}

	s.invalidateListing(ctx)
	return domain.Outcome{RedirectTo: domain.ListingPath}
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, form url.Values) domain.Outcome {
	parsed, errs := s.schema.Parse(form)
	if len(errs) > 0 {
		return domain.Outcome{Errors: errs, Message: domain.MsgUpdateMissingFields}
	}

	customerID, err := snowflake.ParseString(parsed.CustomerID)
	if err != nil {
		errs = domain.FieldErrors{domain.FieldCustomerID: {domain.MsgSelectCustomer}}
		return domain.Outcome{Errors: errs, Message: domain.MsgUpdateMissingFields}
	}

	invoice := domain.Invoice{
		ID:          id,
		CustomerID:  customerID,
		AmountCents: parsed.AmountCents(),
		Status:      domain.InvoiceStatus(parsed.Status),
	}

	if err := s.repo.Update(ctx, s.db, &invoice); err != nil {
		s.log.Error("update invoice failed", zap.Error(err), zap.String("invoice_id", id.String()))
		return domain.Outcome{Message: domain.MsgUpdateFailed, StorageFailed: true}
	}

	s.invalidateListing(ctx)
	return domain.Outcome{RedirectTo: domain.ListingPath}
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) domain.Outcome {
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		s.log.Error("delete invoice failed", zap.Error(err), zap.String("invoice_id", id.String()))
		return domain.Outcome{Message: domain.MsgDeleteFailed, StorageFailed: true}
	}

	// Delete confirms in place: the listing path is invalidated but no
	// redirect is issued.
	s.invalidateListing(ctx)
	return domain.Outcome{Message: domain.MsgDeleted}
}

// invalidateListing is fire-and-forget: a failed invalidation only delays
// the next re-fetch until the cache TTL expires.
func (s *Service) invalidateListing(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, domain.ListingPath); err != nil {
		s.log.Warn("invalidate listing failed", zap.Error(err))
	}
}
