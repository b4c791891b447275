package flatfile

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core/fee"
)

// ledger CSV columns, in persisted order.
var ledgerColumns = []string{
	"ID", "Student Name", "Class Category", "Class Section", "Month",
	"Monthly Fee", "Annual Charges", "Admission Fee",
	"Received Amount", "Payment Method", "Date", "Signature",
	"Entry Timestamp", "Academic Year", "Receipt No",
}

type ledgerRepository struct {
	store *Store
}

var _ fee.LedgerRepository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(store *Store) fee.LedgerRepository {
	return &ledgerRepository{store: store}
}

func (repo *ledgerRepository) LoadAllRecords() ([]fee.PaymentRecord, error) {
	repo.store.ledgerMu.Lock()
	defer repo.store.ledgerMu.Unlock()

	f, err := os.Open(repo.store.ledgerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []fee.PaymentRecord{}, nil
		}
		return nil, errors.Wrap(err, "opening ledger file")
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // older files may lack trailing columns

	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading ledger file")
	}
	if len(rows) == 0 {
		return []fee.PaymentRecord{}, nil
	}

	records := make([]fee.PaymentRecord, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		rec, err := parseRecord(row)
		if err != nil {
			return nil, errors.Wrapf(err, "ledger row %d", i+2)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (repo *ledgerRepository) AppendRecords(records ...fee.PaymentRecord) error {
	if len(records) == 0 {
		return nil
	}
	repo.store.ledgerMu.Lock()
	defer repo.store.ledgerMu.Unlock()

	f, err := os.OpenFile(repo.store.ledgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening ledger file")
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "stating ledger file")
	}

	w := csv.NewWriter(f)
	if fi.Size() == 0 {
		if err = w.Write(ledgerColumns); err != nil {
			return errors.Wrap(err, "writing ledger header")
		}
	}
	for _, rec := range records {
		if err = w.Write(formatRecord(rec)); err != nil {
			return errors.Wrap(err, "writing ledger row")
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return errors.Wrap(err, "flushing ledger file")
	}
	return nil
}

func parseRecord(row []string) (fee.PaymentRecord, error) {
	// pad missing trailing fields with empties rather than dropping the row
	if len(row) < len(ledgerColumns) {
		padded := make([]string, len(ledgerColumns))
		copy(padded, row)
		row = padded
	}

	var rec fee.PaymentRecord
	var err error

	rec.StudentID = row[0]
	rec.StudentName = row[1]
	rec.ClassCategory = row[2]
	rec.ClassSection = row[3]
	rec.Month = fee.Month(row[4])
	if rec.MonthlyFee, err = parseAmount(row[5]); err != nil {
		return rec, errors.Wrap(err, "monthly fee")
	}
	if rec.AnnualCharges, err = parseAmount(row[6]); err != nil {
		return rec, errors.Wrap(err, "annual charges")
	}
	if rec.AdmissionFee, err = parseAmount(row[7]); err != nil {
		return rec, errors.Wrap(err, "admission fee")
	}
	if rec.ReceivedAmount, err = parseAmount(row[8]); err != nil {
		return rec, errors.Wrap(err, "received amount")
	}
	rec.PaymentMethod = row[9]
	if rec.Date, err = parseTime(row[10], fee.DateLayout); err != nil {
		return rec, errors.Wrap(err, "date")
	}
	rec.Signature = row[11]
	if rec.EntryTimestamp, err = parseTime(row[12], fee.TimestampLayout); err != nil {
		return rec, errors.Wrap(err, "entry timestamp")
	}
	rec.AcademicYear = row[13]
	rec.ReceiptNo = row[14]
	return rec, nil
}

func formatRecord(rec fee.PaymentRecord) []string {
	return []string{
		rec.StudentID,
		rec.StudentName,
		rec.ClassCategory,
		rec.ClassSection,
		string(rec.Month),
		strconv.Itoa(rec.MonthlyFee),
		strconv.Itoa(rec.AnnualCharges),
		strconv.Itoa(rec.AdmissionFee),
		strconv.Itoa(rec.ReceivedAmount),
		rec.PaymentMethod,
		formatTime(rec.Date, fee.DateLayout),
		rec.Signature,
		formatTime(rec.EntryTimestamp, fee.TimestampLayout),
		rec.AcademicYear,
		rec.ReceiptNo,
	}
}

func parseAmount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
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
