package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core/fee"
)

type scheduleRepository struct {
	db *sqlx.DB
}

var _ fee.ScheduleRepository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) fee.ScheduleRepository {
	return &scheduleRepository{db: db}
}

type scheduleRow struct {
	StudentID     string `db:"student_id"`
	MonthlyFee    int    `db:"monthly_fee"`
	AnnualCharges int    `db:"annual_charges"`
	AdmissionFee  int    `db:"admission_fee"`
	StudentName   string `db:"student_name"`
	ClassCategory string `db:"class_category"`
}

func (repo *scheduleRepository) LoadAllEntries() (map[string]fee.ScheduleEntry, error) {
	var rows []scheduleRow
	if err := repo.db.Select(&rows, "SELECT * FROM fee_schedule"); err != nil {
		return nil, errors.Wrap(err, "querying fee schedule")
	}

	entries := make(map[string]fee.ScheduleEntry, len(rows))
	for _, row := range rows {
		entries[row.StudentID] = fee.ScheduleEntry{
			MonthlyFee:    row.MonthlyFee,
			AnnualCharges: row.AnnualCharges,
			AdmissionFee:  row.AdmissionFee,
			StudentName:   row.StudentName,
			ClassCategory: row.ClassCategory,
		}
	}
	return entries, nil
}

func (repo *scheduleRepository) SaveAllEntries(entries map[string]fee.ScheduleEntry) error {
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if _, err = tx.Exec("DELETE FROM fee_schedule"); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "clearing fee schedule")
	}
	for id, entry := range entries {
		_, err = tx.NamedExec(`
			INSERT INTO fee_schedule (student_id, monthly_fee, annual_charges, admission_fee, student_name, class_category)
			VALUES (:student_id, :monthly_fee, :annual_charges, :admission_fee, :student_name, :class_category)`,
			scheduleRow{
				StudentID:     id,
				MonthlyFee:    entry.MonthlyFee,
				AnnualCharges: entry.AnnualCharges,
				AdmissionFee:  entry.AdmissionFee,
				StudentName:   entry.StudentName,
				ClassCategory: entry.ClassCategory,
			},
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "inserting fee schedule entry")
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing fee schedule")
	}
	return nil
}
