package dummydb

import (
	"github.com/trezcool/malipo/core/fee"
)

type scheduleRepository struct {
	db *scheduleTable
}

var _ fee.ScheduleRepository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) fee.ScheduleRepository {
	return &scheduleRepository{db: db.schedule}
}

func (repo *scheduleRepository) LoadAllEntries() (map[string]fee.ScheduleEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make(map[string]fee.ScheduleEntry, len(repo.db.table))
	for id, entry := range repo.db.table {
		entries[id] = entry
	}
	return entries, nil
}

func (repo *scheduleRepository) SaveAllEntries(entries map[string]fee.ScheduleEntry) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table = make(map[string]fee.ScheduleEntry, len(entries))
	for id, entry := range entries {
		repo.db.table[id] = entry
	}
	return nil
}
