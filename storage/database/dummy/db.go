package dummydb

import (
	"sync"

	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
)

type (
	DB struct {
		ledger   *ledgerTable
		schedule *scheduleTable
		user     *userTable
	}

	ledgerTable struct {
		sync.RWMutex
		rows []fee.PaymentRecord
	}

	scheduleTable struct {
		sync.RWMutex
		table map[string]fee.ScheduleEntry
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
	}
)

func Open() (*DB, error) {
	db := &DB{
		ledger:   &ledgerTable{rows: make([]fee.PaymentRecord, 0)},
		schedule: &scheduleTable{table: make(map[string]fee.ScheduleEntry)},
		user:     &userTable{table: make(map[int]*user.User)},
	}
	return db, nil
}
