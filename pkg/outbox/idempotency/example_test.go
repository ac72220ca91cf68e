package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type memoryStore map[string]string

func (s memoryStore) Get(_ context.Context, key string) (string, error) {
	return s[key], nil
}

func (s memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s[key]; ok {
		return false, nil
	}
	s[key] = fmt.Sprint(value)
	return true, nil
}

func (s memoryStore) IdempotencyKey(scope, id string) string {
	return "sf:idempotency:" + scope + ":" + id
}

func (s memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s, k)
	}
	return nil
}

func ExampleManager_Claim() {
	ctx := context.Background()
	manager, _ := NewManager(memoryStore{}, 7*24*time.Hour)
	eventID := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")

	for _, attempt := range []string{"delivery", "redelivery"} {
		claimed, _ := manager.Claim(ctx, "order-receipts", eventID)
		fmt.Printf("%s claimed=%v\n", attempt, claimed)
	}

	_ = manager.Release(ctx, "order-receipts", eventID)
	claimed, _ := manager.Claim(ctx, "order-receipts", eventID)
	fmt.Printf("after release claimed=%v\n", claimed)
	// Output:
	// delivery claimed=true
	// redelivery claimed=false
	// after release claimed=true
}
