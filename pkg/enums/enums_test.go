package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus(" shipped ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != OrderStatusShipped {
		t.Fatalf("expected SHIPPED, got %s", got)
	}
	if _, err := ParseOrderStatus("lost"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestOrderStatusIsPlaced(t *testing.T) {
	if OrderStatusPending.IsPlaced() {
		t.Fatal("pending orders are carts, not placed orders")
	}
	for _, status := range PlacedOrderStatuses {
		if !status.IsPlaced() {
			t.Fatalf("expected %s to count as placed", status)
		}
	}
	if OrderStatus("bogus").IsPlaced() {
		t.Fatal("unknown statuses are never placed")
	}
}

func TestUserRoleAuthority(t *testing.T) {
	if got := UserRoleAdmin.Authority(); got != "ROLE_ADMIN" {
		t.Fatalf("unexpected authority %s", got)
	}
	role, err := ParseUserRole("customer")
	if err != nil || role != UserRoleCustomer {
		t.Fatalf("expected CUSTOMER, got %s (%v)", role, err)
	}
	if _, err := ParseUserRole("vendor"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
