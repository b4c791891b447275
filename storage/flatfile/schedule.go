package flatfile

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core/fee"
)

type scheduleRepository struct {
	store *Store
}

var _ fee.ScheduleRepository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(store *Store) fee.ScheduleRepository {
	return &scheduleRepository{store: store}
}

func (repo *scheduleRepository) LoadAllEntries() (map[string]fee.ScheduleEntry, error) {
	repo.store.scheduleMu.Lock()
	defer repo.store.scheduleMu.Unlock()

	data, err := os.ReadFile(repo.store.schedulePath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]fee.ScheduleEntry), nil
		}
		return nil, errors.Wrap(err, "reading schedule file")
	}

	entries := make(map[string]fee.ScheduleEntry)
	if len(data) == 0 {
		return entries, nil
	}
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "parsing schedule file")
	}
	return entries, nil
}

func (repo *scheduleRepository) SaveAllEntries(entries map[string]fee.ScheduleEntry) error {
	repo.store.scheduleMu.Lock()
	defer repo.store.scheduleMu.Unlock()

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encoding schedule")
	}

	// write to a temp file then rename so a crash cannot truncate the store
	tmp := repo.store.schedulePath + ".tmp"
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "writing schedule file")
	}
	if err = os.Rename(tmp, repo.store.schedulePath); err != nil {
		return errors.Wrap(err, "replacing schedule file")
	}
	return nil
}
