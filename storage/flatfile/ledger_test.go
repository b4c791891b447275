package flatfile

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/malipo/core"
	"github.com/trezcool/malipo/core/fee"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(core.StorageConfig{
		DataDir:      t.TempDir(),
		LedgerFile:   "fees_data.csv",
		ScheduleFile: "student_fees.json",
		UsersFile:    "users.json",
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return store
}

func testRecord(month fee.Month) fee.PaymentRecord {
	return fee.PaymentRecord{
		StudentID:      "2D1DD6CF",
		StudentName:    "John Doe",
		ClassCategory:  "Class 1",
		ClassSection:   "A",
		Month:          month,
		MonthlyFee:     2000,
		ReceivedAmount: 2000,
		PaymentMethod:  "Cash",
		Date:           time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Signature:      "clerk",
		EntryTimestamp: time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		AcademicYear:   "2024-2025",
		ReceiptNo:      "r-1",
	}
}

func Test_ledgerRepository_missingFile(t *testing.T) {
	repo := NewLedgerRepository(newTestStore(t))

	records, err := repo.LoadAllRecords()
	if err != nil {
		t.Fatalf("LoadAllRecords() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func Test_ledgerRepository_roundTrip(t *testing.T) {
	repo := NewLedgerRepository(newTestStore(t))

	want := []fee.PaymentRecord{testRecord(fee.June), testRecord(fee.July)}
	if err := repo.AppendRecords(want...); err != nil {
		t.Fatalf("AppendRecords() failed: %v", err)
	}
	// second append must not repeat the header
	extra := testRecord(fee.August)
	if err := repo.AppendRecords(extra); err != nil {
		t.Fatalf("AppendRecords() failed: %v", err)
	}
	want = append(want, extra)

	got, err := repo.LoadAllRecords()
	if err != nil {
		t.Fatalf("LoadAllRecords() failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadAllRecords() = %+v, want %+v", got, want)
	}
}

func Test_ledgerRepository_header(t *testing.T) {
	store := newTestStore(t)
	repo := NewLedgerRepository(store)

	if err := repo.AppendRecords(testRecord(fee.June)); err != nil {
		t.Fatalf("AppendRecords() failed: %v", err)
	}

	data, err := os.ReadFile(store.ledgerPath)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("file has %d lines, want 2", len(lines))
	}
	wantHeader := "ID,Student Name,Class Category,Class Section,Month," +
		"Monthly Fee,Annual Charges,Admission Fee,Received Amount," +
		"Payment Method,Date,Signature,Entry Timestamp,Academic Year,Receipt No"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
}

func Test_ledgerRepository_shortRows(t *testing.T) {
	store := newTestStore(t)

	// a file written before the Receipt No column was added
	content := strings.Join([]string{
		"ID,Student Name,Class Category,Class Section,Month,Monthly Fee,Annual Charges,Admission Fee,Received Amount,Payment Method,Date,Signature,Entry Timestamp,Academic Year",
		"2D1DD6CF,John Doe,Class 1,A,JUNE,2000,0,0,2000,Cash,2024-06-15,clerk,2024-06-15 10:30:00,2024-2025",
	}, "\n") + "\n"
	if err := os.WriteFile(store.ledgerPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	records, err := NewLedgerRepository(store).LoadAllRecords()
	if err != nil {
		t.Fatalf("LoadAllRecords() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].ReceiptNo != "" {
		t.Errorf("ReceiptNo = %q, want empty", records[0].ReceiptNo)
	}
	if records[0].MonthlyFee != 2000 || records[0].Month != fee.June {
		t.Errorf("record = %+v", records[0])
	}
}

func Test_ledgerRepository_badRow(t *testing.T) {
	store := newTestStore(t)

	content := strings.Join([]string{
		"ID,Student Name,Class Category,Class Section,Month,Monthly Fee,Annual Charges,Admission Fee,Received Amount,Payment Method,Date,Signature,Entry Timestamp,Academic Year,Receipt No",
		"2D1DD6CF,John Doe,Class 1,A,JUNE,lol,0,0,2000,Cash,2024-06-15,clerk,2024-06-15 10:30:00,2024-2025,r-1",
	}, "\n") + "\n"
	if err := os.WriteFile(store.ledgerPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, err := NewLedgerRepository(store).LoadAllRecords(); err == nil {
		t.Error("LoadAllRecords() succeeded on a corrupt amount, want error")
	}
}
