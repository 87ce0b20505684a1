package domain

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form field names as submitted by the dashboard.
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

// User-facing validation messages.
const (
	MsgSelectCustomer = "Please select a customer."
	MsgAmountTooSmall = "Please enter an amount greater than $0."
	MsgSelectStatus   = "Please select an invoice status."
)

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

// InvoiceForm is the typed result of a validated submission. Amount is
// the decimal dollar value as entered.
type InvoiceForm struct {
	CustomerID string  `validate:"required"`
	Amount     float64 `validate:"gt=0"`
	Status     string  `validate:"oneof=pending paid"`
}

// AmountCents converts the dollar amount to the integer cents stored in
// the database.
func (f InvoiceForm) AmountCents() int64 {
	return int64(math.Round(f.Amount * 100))
}

type fieldRule struct {
	field   string
	message string
}

// FormSchema validates raw invoice submissions. It is immutable and built
// once at startup; create and edit share it unchanged.
type FormSchema struct {
	validate *validator.Validate
	rules    map[string]fieldRule // struct field -> form field + message
}

func NewFormSchema() *FormSchema {
	return &FormSchema{
		validate: validator.New(),
		rules: map[string]fieldRule{
			"CustomerID": {field: FieldCustomerID, message: MsgSelectCustomer},
			"Amount":     {field: FieldAmount, message: MsgAmountTooSmall},
			"Status":     {field: FieldStatus, message: MsgSelectStatus},
		},
	}
}

// Parse coerces and validates raw form values. On failure every invalid
// field is reported and no field is considered validated.
func (s *FormSchema) Parse(values url.Values) (InvoiceForm, FieldErrors) {
	form := InvoiceForm{
		CustomerID: strings.TrimSpace(values.Get(FieldCustomerID)),
		Status:     values.Get(FieldStatus),
	}

	// Absent or non-numeric amounts stay zero and fail the gt rule below,
	// so coercion failures and non-positive values share one message.
	if raw := strings.TrimSpace(values.Get(FieldAmount)); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			form.Amount = parsed
		}
	}

	err := s.validate.Struct(form)
	if err == nil {
		return form, nil
	}

	errs := FieldErrors{}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		errs.add(FieldCustomerID, MsgSelectCustomer)
		return InvoiceForm{}, errs
	}
	for _, fieldErr := range vErrs {
		rule, ok := s.rules[fieldErr.StructField()]
		if !ok {
			continue
		}
		errs.add(rule.field, rule.message)
	}
	return InvoiceForm{}, errs
}
