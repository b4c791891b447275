package fee

import (
	"time"

	"github.com/trezcool/malipo/core"
)

// Kind discriminates the three fee categories a payment can settle.
type Kind string

const (
	KindMonthly   Kind = "monthly"
	KindAnnual    Kind = "annual"
	KindAdmission Kind = "admission"
)

var Kinds = []Kind{KindMonthly, KindAnnual, KindAdmission}

// Month is a calendar month name as persisted in the ledger, or one of the
// ANNUAL/ADMISSION markers used by non-monthly records.
type Month string

const (
	April     Month = "APRIL"
	May       Month = "MAY"
	June      Month = "JUNE"
	July      Month = "JULY"
	August    Month = "AUGUST"
	September Month = "SEPTEMBER"
	October   Month = "OCTOBER"
	November  Month = "NOVEMBER"
	December  Month = "DECEMBER"
	January   Month = "JANUARY"
	February  Month = "FEBRUARY"
	March     Month = "MARCH"

	MonthAnnual    Month = "ANNUAL"
	MonthAdmission Month = "ADMISSION"
)

// Default fee amounts, applied when no schedule override exists for a student.
const (
	DefaultMonthlyFee    = 2000
	DefaultAnnualCharges = 2000
	DefaultAdmissionFee  = 1000
)

// NotSet is the placeholder name/category on a default ScheduleEntry.
const NotSet = "Not Set"

var (
	ClassCategories = []string{
		"Nursery", "KGI", "KGII",
		"Class 1", "Class 2", "Class 3", "Class 4", "Class 5",
		"Class 6", "Class 7", "Class 8", "Class 9", "Class 10 (Matric)",
	}

	PaymentMethods = []string{"Cash", "Bank Transfer", "Cheque", "Online Payment", "Other"}
)

// Persisted time layouts. Storage backends must use these verbatim so records
// round-trip unchanged.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// PaymentRecord is one row of the ledger. Exactly one of MonthlyFee,
// AnnualCharges or AdmissionFee is non-zero; Month tells which.
// Records are immutable once appended.
type PaymentRecord struct {
	StudentID      string    `json:"id" db:"student_id"`
	StudentName    string    `json:"student_name" db:"student_name"`
	ClassCategory  string    `json:"class_category" db:"class_category"`
	ClassSection   string    `json:"class_section" db:"class_section"`
	Month          Month     `json:"month" db:"month"`
	MonthlyFee     int       `json:"monthly_fee" db:"monthly_fee"`
	AnnualCharges  int       `json:"annual_charges" db:"annual_charges"`
	AdmissionFee   int       `json:"admission_fee" db:"admission_fee"`
	ReceivedAmount int       `json:"received_amount" db:"received_amount"`
	PaymentMethod  string    `json:"payment_method" db:"payment_method"`
	Date           time.Time `json:"date" db:"date"`
	Signature      string    `json:"signature" db:"signature"`
	EntryTimestamp time.Time `json:"entry_timestamp" db:"entry_timestamp"`
	AcademicYear   string    `json:"academic_year" db:"academic_year"`
	ReceiptNo      string    `json:"receipt_no" db:"receipt_no"`
}

// Amount returns the record's single non-zero fee amount.
func (r PaymentRecord) Amount() int {
	switch r.Month {
	case MonthAnnual:
		return r.AnnualCharges
	case MonthAdmission:
		return r.AdmissionFee
	default:
		return r.MonthlyFee
	}
}

// ScheduleEntry holds a student's fee override. The JSON field names match the
// persisted schedule document and must round-trip exactly.
type ScheduleEntry struct {
	MonthlyFee    int    `json:"monthly_fee"`
	AnnualCharges int    `json:"annual_charges"`
	AdmissionFee  int    `json:"admission_fee"`
	StudentName   string `json:"student_name"`
	ClassCategory string `json:"class_category"`
}

// DefaultScheduleEntry is returned when a student has no override.
func DefaultScheduleEntry() ScheduleEntry {
	return ScheduleEntry{
		MonthlyFee:    DefaultMonthlyFee,
		AnnualCharges: DefaultAnnualCharges,
		AdmissionFee:  DefaultAdmissionFee,
		StudentName:   NotSet,
		ClassCategory: NotSet,
	}
}

// AmountFor returns the entry's amount for the given fee kind.
func (e ScheduleEntry) AmountFor(kind Kind) int {
	switch kind {
	case KindMonthly:
		return e.MonthlyFee
	case KindAnnual:
		return e.AnnualCharges
	case KindAdmission:
		return e.AdmissionFee
	}
	return 0
}

// NewPayment contains information needed to submit a payment.
type NewPayment struct {
	StudentName   string    `json:"student_name" validate:"required"`
	ClassCategory string    `json:"class_category" validate:"required"`
	ClassSection  string    `json:"class_section"`
	Kind          Kind      `json:"fee_type" validate:"required,feekind"`
	Months        []Month   `json:"months" validate:"omitempty,dive,calmonth"`
	PaymentMethod string    `json:"payment_method" validate:"required,paymethod"`
	Date          time.Time `json:"date"`
	Signature     string    `json:"signature" validate:"required"`
}

func (np *NewPayment) Validate() error {
	np.StudentName = core.CleanString(np.StudentName)
	np.ClassCategory = core.CleanString(np.ClassCategory)
	np.ClassSection = core.CleanString(np.ClassSection)
	np.Signature = core.CleanString(np.Signature)
	if np.Date.IsZero() {
		np.Date = time.Now()
	}
	return core.Validate.Struct(np)
}

// StudentID resolves the payment's student identifier.
func (np NewPayment) StudentID() string {
	if np.StudentName == "" || np.ClassCategory == "" {
		return ""
	}
	return ResolveStudentID(np.StudentName, np.ClassCategory)
}

// PaidStatus reports whether the annual charges and admission fee have been
// settled for a (student, academic year) pair.
type PaidStatus struct {
	AnnualPaid    bool `json:"annual_paid"`
	AdmissionPaid bool `json:"admission_paid"`
}

// Totals sums a student's ledger records per fee category.
type Totals struct {
	Monthly   int `json:"monthly"`
	Annual    int `json:"annual"`
	Admission int `json:"admission"`
	Received  int `json:"received"`
}
