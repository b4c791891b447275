// Package flatfile persists the payment ledger as a CSV file and the fee
// schedule as a JSON document, both local to the process. It assumes it owns
// exclusive access to the files; two processes sharing the same data
// directory can race on append.
package flatfile

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core"
)

type Store struct {
	ledgerPath   string
	schedulePath string
	usersPath    string

	// serializes file access within the process
	ledgerMu   sync.Mutex
	scheduleMu sync.Mutex
	userMu     sync.Mutex
}

func Open(conf core.StorageConfig) (*Store, error) {
	if err := os.MkdirAll(conf.DataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}
	return &Store{
		ledgerPath:   filepath.Join(conf.DataDir, conf.LedgerFile),
		schedulePath: filepath.Join(conf.DataDir, conf.ScheduleFile),
		usersPath:    filepath.Join(conf.DataDir, conf.UsersFile),
	}, nil
}
