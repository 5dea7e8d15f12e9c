package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeNotAcceptable, status: http.StatusNotAcceptable, publicMsg: "request not acceptable"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsMatchesWrappedCode(t *testing.T) {
	inner := New(CodeNotAcceptable, "Email already exists")
	outer := fmt.Errorf("sign up: %w", inner)
	if !Is(outer, CodeNotAcceptable) {
		t.Fatalf("expected wrapped code to match")
	}
	if Is(outer, CodeConflict) {
		t.Fatalf("unexpected match for a different code")
	}
	if Is(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("untyped errors should not match")
	}

	nested := Wrap(CodeInternal, fmt.Errorf("tx: %w", New(CodeStateConflict, "cart is empty")), "place order")
	if !Is(nested, CodeStateConflict) {
		t.Fatalf("expected inner code to match through an outer typed error")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("dial tcp: refused"), "ping redis")
	if got := err.Error(); got != "DEPENDENCY_ERROR: ping redis: dial tcp: refused" {
		t.Fatalf("unexpected error string %q", got)
	}
	if got := Newf(CodeNotFound, "order %d", 7).Error(); got != "NOT_FOUND: order 7" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestClientFacingCodes(t *testing.T) {
	for _, code := range []Code{CodeInternal, CodeDependency} {
		if MetadataFor(code).ClientFacing {
			t.Fatalf("%s must not expose its message", code)
		}
	}
	if !MetadataFor(CodeValidation).ClientFacing {
		t.Fatalf("validation messages are shown to clients")
	}
}

func TestDumpCapturesChain(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "load order")
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
	if dump.PG != nil {
		t.Fatalf("non-postgres errors should not carry diagnostics")
	}
}

func TestPostgresDiagnosticsFromEitherDriver(t *testing.T) {
	pgxErr := Wrap(CodeDependency, &pgconn.PgError{Code: SQLStateUniqueViolation, ConstraintName: "coupon_code_key"}, "create coupon")
	if !IsUniqueViolation(pgxErr, "coupon_code_key") {
		t.Fatalf("pgx unique violation not detected")
	}
	if IsUniqueViolation(pgxErr, "users_email_key") {
		t.Fatalf("constraint name must be honoured")
	}

	pqErr := fmt.Errorf("insert: %w", &pq.Error{Code: SQLStateForeignKeyViolation, Table: "product"})
	if !HasSQLState(pqErr, SQLStateForeignKeyViolation, "") {
		t.Fatalf("pq foreign key violation not detected")
	}
	fields := Dump(pqErr).Fields()
	if fields["pg_table"] != "product" {
		t.Fatalf("expected pg_table field, got %v", fields)
	}
	if _, ok := fields["pg_detail"]; ok {
		t.Fatalf("empty pg fields should be omitted: %v", fields)
	}
}

func TestDumpFieldsOmitsEmptyPostgresColumns(t *testing.T) {
	fields := Dump(New(CodeNotFound, "order not found")).Fields()
	if _, ok := fields["pg_code"]; ok {
		t.Fatalf("pg fields should be omitted: %v", fields)
	}
	if fields["error_code"] != CodeNotFound {
		t.Fatalf("unexpected error code field %v", fields["error_code"])
	}
}
