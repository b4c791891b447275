package testutil

import (
	"testing"
	"time"

	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// SeedPayment appends a single ledger record for the student. Exactly one of
// the three fee amounts should be non-zero, discriminated by month.
func SeedPayment(
	t *testing.T,
	ledger fee.LedgerRepository,
	name, category string,
	month fee.Month,
	monthly, annual, admission int,
	academicYear string,
) fee.PaymentRecord {
	t.Helper()

	now := time.Now()
	rec := fee.PaymentRecord{
		StudentID:      fee.ResolveStudentID(name, category),
		StudentName:    name,
		ClassCategory:  category,
		ClassSection:   "A",
		Month:          month,
		MonthlyFee:     monthly,
		AnnualCharges:  annual,
		AdmissionFee:   admission,
		ReceivedAmount: monthly + annual + admission,
		PaymentMethod:  "Cash",
		Date:           now,
		Signature:      "clerk",
		EntryTimestamp: now,
		AcademicYear:   academicYear,
		ReceiptNo:      "seed",
	}
	if err := ledger.AppendRecords(rec); err != nil {
		t.Fatalf("SeedPayment() failed: %v", err)
	}
	return rec
}

// SetFees installs a fee override for the student and returns the resolved ID.
func SetFees(
	t *testing.T,
	schedule *fee.Schedule,
	name, category string,
	monthly, annual, admission int,
) string {
	t.Helper()

	id, err := schedule.SetOverride(fee.NewScheduleEntry{
		StudentName:   name,
		ClassCategory: category,
		MonthlyFee:    monthly,
		AnnualCharges: annual,
		AdmissionFee:  admission,
	})
	if err != nil {
		t.Fatalf("SetFees() failed: %v", err)
	}
	return id
}
