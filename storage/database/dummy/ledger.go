package dummydb

import (
	"github.com/trezcool/malipo/core/fee"
)

type ledgerRepository struct {
	db *ledgerTable
}

var _ fee.LedgerRepository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *DB) fee.LedgerRepository {
	return &ledgerRepository{db: db.ledger}
}

func (repo *ledgerRepository) LoadAllRecords() ([]fee.PaymentRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]fee.PaymentRecord, len(repo.db.rows))
	copy(records, repo.db.rows)
	return records, nil
}

func (repo *ledgerRepository) AppendRecords(records ...fee.PaymentRecord) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows = append(repo.db.rows, records...)
	return nil
}
