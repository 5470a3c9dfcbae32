package memory

import (
	"context"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/store"
)

type operationLogStore struct {
	binding
}

var _ store.OperationLogStore = (*operationLogStore)(nil)

func (s *operationLogStore) Append(_ context.Context, entry *domain.OperationLog) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	return s.write(func(t *txn) error {
		stored := *entry
		t.logs.Insert(idKey(t.nextLogSeq), &stored)
		t.nextLogSeq++
		return nil
	})
}

// Entries returns every committed operation log entry in append order.
func (s *Store) Entries() []*domain.OperationLog {
	entries := make([]*domain.OperationLog, 0)
	s.read().logs.Walk(func(_ []byte, entry *domain.OperationLog) bool {
		e := *entry
		entries = append(entries, &e)
		return false
	})
	return entries
}
