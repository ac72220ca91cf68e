package pubsub

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestResourceNames(t *testing.T) {
	c := &Client{projectID: "shop-prod"}

	cases := []struct {
		name       string
		collection string
		in         string
		want       string
	}{
		{"subscription id", "subscriptions", "orders-sub", "projects/shop-prod/subscriptions/orders-sub"},
		{"subscription full", "subscriptions", "projects/other/subscriptions/x", "projects/other/subscriptions/x"},
		{"subscription blank", "subscriptions", "  ", ""},
		{"topic id", "topics", " orders ", "projects/shop-prod/topics/orders"},
		{"topic full", "topics", "projects/other/topics/y", "projects/other/topics/y"},
		{"topic given a subscription path", "topics", "projects/other/subscriptions/x", "projects/shop-prod/topics/projects/other/subscriptions/x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.resourceName(tc.collection, tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLookupError(t *testing.T) {
	if err := lookupError("topic", "t", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	missing := lookupError("subscription", "s", status.Error(codes.NotFound, "gone"))
	if missing == nil || missing.Error() != `subscription "s" does not exist` {
		t.Fatalf("unexpected not-found error %v", missing)
	}
	cause := errors.New("deadline")
	if err := lookupError("topic", "t", cause); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestNilClientHandles(t *testing.T) {
	var c *Client
	if c.Publisher("orders") != nil {
		t.Fatal("expected nil publisher")
	}
	if c.Subscription("orders-sub") != nil {
		t.Fatal("expected nil subscriber")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping on nil client to fail")
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{ProjectID: " "}, config.PubSubConfig{}, nil)
	if !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected project error, got %v", err)
	}
}
