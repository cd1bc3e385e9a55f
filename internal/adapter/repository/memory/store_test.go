package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/walletfy/internal/domain"
)

func TestStoreGetPut(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}

	value := []byte(`{"a":1}`)
	if err := s.Put(ctx, "k", value); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	value[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("stored value was aliased: %s", got)
	}
}
