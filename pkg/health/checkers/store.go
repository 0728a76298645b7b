package checkers

import (
	"context"
	"time"

	"github.com/akorchemkin/sitebase/pkg/tablestore"
)

// StoreChecker verifies the table store answers a cheap request.
type StoreChecker struct {
	store tablestore.Store
}

func NewStoreChecker(store tablestore.Store) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string { return "tablestore" }

func (c *StoreChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, err := c.store.ListTables(ctx)
	return err
}
