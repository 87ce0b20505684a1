package domain

import (
	"net/url"
	"testing"
)

func validValues() url.Values {
	return url.Values{
		FieldCustomerID: {"1234567890"},
		FieldAmount:     {"12.50"},
		FieldStatus:     {"pending"},
	}
}

func TestParseValidForm(t *testing.T) {
	schema := NewFormSchema()

	form, errs := schema.Parse(validValues())
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if form.CustomerID != "1234567890" {
		t.Fatalf("unexpected customer id %q", form.CustomerID)
	}
	if form.Status != "pending" {
		t.Fatalf("unexpected status %q", form.Status)
	}
	if form.AmountCents() != 1250 {
		t.Fatalf("expected 1250 cents, got %d", form.AmountCents())
	}
}

func TestParseAmountRejected(t *testing.T) {
	schema := NewFormSchema()

	for _, raw := range []string{"0", "-5", "0.00", "abc", ""} {
		values := validValues()
		values.Set(FieldAmount, raw)

		_, errs := schema.Parse(values)
		if len(errs) != 1 {
			t.Fatalf("amount %q: expected only an amount error, got %v", raw, errs)
		}
		messages := errs[FieldAmount]
		if len(messages) != 1 || messages[0] != MsgAmountTooSmall {
			t.Fatalf("amount %q: unexpected messages %v", raw, messages)
		}
	}
}

func TestParseAmountAbsent(t *testing.T) {
	schema := NewFormSchema()

	values := validValues()
	values.Del(FieldAmount)

	_, errs := schema.Parse(values)
	if got := errs[FieldAmount]; len(got) != 1 || got[0] != MsgAmountTooSmall {
		t.Fatalf("unexpected amount errors %v", got)
	}
}

func TestParseStatusExactMatchOnly(t *testing.T) {
	schema := NewFormSchema()

	for _, raw := range []string{"Pending", "PAID", "paid ", "open", ""} {
		values := validValues()
		values.Set(FieldStatus, raw)

		_, errs := schema.Parse(values)
		if got := errs[FieldStatus]; len(got) != 1 || got[0] != MsgSelectStatus {
			t.Fatalf("status %q: unexpected errors %v", raw, got)
		}
	}
}

func TestParseAccumulatesAllFieldErrors(t *testing.T) {
	schema := NewFormSchema()

	_, errs := schema.Parse(url.Values{})
	if len(errs) != 3 {
		t.Fatalf("expected errors for all three fields, got %v", errs)
	}
	if got := errs[FieldCustomerID]; len(got) != 1 || got[0] != MsgSelectCustomer {
		t.Fatalf("unexpected customer errors %v", got)
	}
	if got := errs[FieldAmount]; len(got) != 1 || got[0] != MsgAmountTooSmall {
		t.Fatalf("unexpected amount errors %v", got)
	}
	if got := errs[FieldStatus]; len(got) != 1 || got[0] != MsgSelectStatus {
		t.Fatalf("unexpected status errors %v", got)
	}
}

func TestParseNoPartialSuccess(t *testing.T) {
	schema := NewFormSchema()

	values := validValues()
	values.Set(FieldStatus, "open")

	form, errs := schema.Parse(values)
	if len(errs) == 0 {
		t.Fatal("expected failure")
	}
	if form.CustomerID != "" || form.Amount != 0 {
		t.Fatalf("expected zero form on failure, got %+v", form)
	}
}
