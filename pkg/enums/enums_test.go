package enums

import "testing"

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !role.IsStaff() {
		t.Fatalf("expected admin to be staff")
	}
	if UserRoleCustomer.IsStaff() {
		t.Fatalf("customer must not be staff")
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatalf("expected invalid role error")
	}
}

func TestOutboxEventTypes(t *testing.T) {
	for _, value := range []string{"order_created", "order_status_changed"} {
		if _, err := ParseOutboxEventType(value); err != nil {
			t.Fatalf("expected %q to parse: %v", value, err)
		}
	}
	if OutboxEventType("order_paid").IsValid() {
		t.Fatalf("unexpected valid event type")
	}
	if !AggregateOrder.IsValid() {
		t.Fatalf("expected order aggregate to be valid")
	}
}

func TestBuyerKindAccrues(t *testing.T) {
	cases := map[BuyerKind]bool{
		BuyerKindRegistered: true,
		BuyerKindNewUser:    true,
		BuyerKindGuest:      false,
	}
	for kind, want := range cases {
		if got := kind.Accrues(); got != want {
			t.Fatalf("%s: expected %v, got %v", kind, want, got)
		}
	}
}
