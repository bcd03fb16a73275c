package repository

import "gorm.io/gorm"

// TxRunner runs a function inside a single database transaction.
// Multi-step mutations (vote toggle + history upsert, entity write +
// version snapshot, identity resolution + account creation) go through
// this so partial failures leave no orphaned rows.
type TxRunner interface {
	RunInTx(fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewTxRunner creates a TxRunner backed by gorm transactions
func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) RunInTx(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
