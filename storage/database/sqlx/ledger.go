package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core/fee"
)

type ledgerRepository struct {
	db *sqlx.DB
}

var _ fee.LedgerRepository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *sqlx.DB) fee.LedgerRepository {
	return &ledgerRepository{db: db}
}

// ledgerRow mirrors the ledger table. Dates are persisted as text in the
// canonical layouts so rows round-trip exactly like the flatfile backend.
type ledgerRow struct {
	StudentID      string `db:"student_id"`
	StudentName    string `db:"student_name"`
	ClassCategory  string `db:"class_category"`
	ClassSection   string `db:"class_section"`
	Month          string `db:"month"`
	MonthlyFee     int    `db:"monthly_fee"`
	AnnualCharges  int    `db:"annual_charges"`
	AdmissionFee   int    `db:"admission_fee"`
	ReceivedAmount int    `db:"received_amount"`
	PaymentMethod  string `db:"payment_method"`
	Date           string `db:"date"`
	Signature      string `db:"signature"`
	EntryTimestamp string `db:"entry_timestamp"`
	AcademicYear   string `db:"academic_year"`
	ReceiptNo      string `db:"receipt_no"`
}

const ledgerCols = `student_id, student_name, class_category, class_section, month,
	monthly_fee, annual_charges, admission_fee, received_amount, payment_method,
	date, signature, entry_timestamp, academic_year, receipt_no`

func (repo *ledgerRepository) LoadAllRecords() ([]fee.PaymentRecord, error) {
	var rows []ledgerRow
	if err := repo.db.Select(&rows, "SELECT "+ledgerCols+" FROM ledger ORDER BY seq"); err != nil {
		return nil, errors.Wrap(err, "querying ledger")
	}

	records := make([]fee.PaymentRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, errors.Wrapf(err, "ledger row %d", i+1)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (repo *ledgerRepository) AppendRecords(records ...fee.PaymentRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	for _, rec := range records {
		_, err = tx.NamedExec(`
			INSERT INTO ledger (`+ledgerCols+`)
			VALUES (:student_id, :student_name, :class_category, :class_section, :month,
				:monthly_fee, :annual_charges, :admission_fee, :received_amount, :payment_method,
				:date, :signature, :entry_timestamp, :academic_year, :receipt_no)`,
			toRow(rec),
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "inserting ledger row")
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing ledger append")
	}
	return nil
}

func toRow(rec fee.PaymentRecord) ledgerRow {
	return ledgerRow{
		StudentID:      rec.StudentID,
		StudentName:    rec.StudentName,
		ClassCategory:  rec.ClassCategory,
		ClassSection:   rec.ClassSection,
		Month:          string(rec.Month),
		MonthlyFee:     rec.MonthlyFee,
		AnnualCharges:  rec.AnnualCharges,
		AdmissionFee:   rec.AdmissionFee,
		ReceivedAmount: rec.ReceivedAmount,
		PaymentMethod:  rec.PaymentMethod,
		Date:           formatTime(rec.Date, fee.DateLayout),
		Signature:      rec.Signature,
		EntryTimestamp: formatTime(rec.EntryTimestamp, fee.TimestampLayout),
		AcademicYear:   rec.AcademicYear,
		ReceiptNo:      rec.ReceiptNo,
	}
}

func (row ledgerRow) toRecord() (fee.PaymentRecord, error) {
	date, err := parseTime(row.Date, fee.DateLayout)
	if err != nil {
		return fee.PaymentRecord{}, errors.Wrap(err, "date")
	}
	tstamp, err := parseTime(row.EntryTimestamp, fee.TimestampLayout)
	if err != nil {
		return fee.PaymentRecord{}, errors.Wrap(err, "entry timestamp")
	}
	return fee.PaymentRecord{
		StudentID:      row.StudentID,
		StudentName:    row.StudentName,
		ClassCategory:  row.ClassCategory,
		ClassSection:   row.ClassSection,
		Month:          fee.Month(row.Month),
		MonthlyFee:     row.MonthlyFee,
		AnnualCharges:  row.AnnualCharges,
		AdmissionFee:   row.AdmissionFee,
		ReceivedAmount: row.ReceivedAmount,
		PaymentMethod:  row.PaymentMethod,
		Date:           date,
		Signature:      row.Signature,
		EntryTimestamp: tstamp,
		AcademicYear:   row.AcademicYear,
		ReceiptNo:      row.ReceiptNo,
	}, nil
}

func parseTime(s, layout string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(layout, s)
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}
