package fee

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core"
)

var (
	// validation failures, surfaced as rejection reasons; none of them is
	// fatal and no ledger write happens when one is returned.
	ErrMissingRequiredField = errors.New("please fill all required fields")
	ErrUnidentifiedStudent  = errors.New("student could not be identified; enter the student name and class category")
	ErrNoMonthSelected      = errors.New("select at least one unpaid month for a monthly fee payment")
	ErrAlreadyPaid          = errors.New("already paid for this academic year")

	nowFunc      = time.Now // mockable
	newReceiptNo = uuid.New // mockable
)

type (
	// LedgerRepository persists the append-only payment log. AppendRecords
	// must be all-or-nothing and preserve insertion order; LoadAllRecords
	// returns an empty slice when no data exists yet.
	LedgerRepository interface {
		LoadAllRecords() ([]PaymentRecord, error)
		AppendRecords(records ...PaymentRecord) error
	}

	// Engine derives payment state from the ledger on each query (nothing is
	// materialized) and validates new submissions before appending them.
	// It assumes exclusive access to the ledger for the duration of a
	// submission; cross-process coordination is out of scope.
	Engine struct {
		ledger   LedgerRepository
		schedule *Schedule
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

// NewEngine wires the payment-state engine. mailSvc may be nil; receipts are
// then skipped.
func NewEngine(ledger LedgerRepository, schedule *Schedule, mailSvc core.EmailService, conf *core.Config) *Engine {
	return &Engine{ledger: ledger, schedule: schedule, mailSvc: mailSvc, conf: conf}
}

func (eng *Engine) Schedule() *Schedule { return eng.schedule }

// AllRecords returns the full ledger in insertion order.
func (eng *Engine) AllRecords() ([]PaymentRecord, error) {
	records, err := eng.ledger.LoadAllRecords()
	if err != nil {
		return nil, errors.Wrap(err, "loading ledger")
	}
	return records, nil
}

// PaidStatus reports whether annual charges and the admission fee have been
// paid for the given student and academic year. A category counts as paid
// when its amounts over the matching records sum above zero.
func (eng *Engine) PaidStatus(studentID, academicYear string) (PaidStatus, error) {
	records, err := eng.ledger.LoadAllRecords()
	if err != nil {
		return PaidStatus{}, errors.Wrap(err, "loading ledger")
	}
	var annualSum, admissionSum int
	for _, r := range records {
		if r.StudentID != studentID || r.AcademicYear != academicYear {
			continue
		}
		annualSum += r.AnnualCharges
		admissionSum += r.AdmissionFee
	}
	return PaidStatus{AnnualPaid: annualSum > 0, AdmissionPaid: admissionSum > 0}, nil
}

// UnpaidMonths returns the academic months with no monthly-fee record for the
// student. The scan deliberately covers the student's records across all
// academic years, matching the historical ledger behavior.
func (eng *Engine) UnpaidMonths(studentID string) ([]Month, error) {
	records, err := eng.ledger.LoadAllRecords()
	if err != nil {
		return nil, errors.Wrap(err, "loading ledger")
	}
	if studentID == "" {
		return append([]Month(nil), Months...), nil
	}
	paid := eng.paidMonthSet(records, studentID)
	unpaid := make([]Month, 0, len(Months))
	for _, m := range Months {
		if !paid[m] {
			unpaid = append(unpaid, m)
		}
	}
	return unpaid, nil
}

// PaidMonths is the complement of UnpaidMonths, in academic order.
func (eng *Engine) PaidMonths(studentID string) ([]Month, error) {
	records, err := eng.ledger.LoadAllRecords()
	if err != nil {
		return nil, errors.Wrap(err, "loading ledger")
	}
	paid := eng.paidMonthSet(records, studentID)
	months := make([]Month, 0, len(paid))
	for _, m := range Months {
		if paid[m] {
			months = append(months, m)
		}
	}
	return months, nil
}

func (eng *Engine) paidMonthSet(records []PaymentRecord, studentID string) map[Month]bool {
	paid := make(map[Month]bool)
	for _, r := range records {
		if r.StudentID == studentID && r.MonthlyFee > 0 {
			paid[r.Month] = true
		}
	}
	return paid
}

// History returns a student's payment records in ledger order along with
// per-category totals.
func (eng *Engine) History(studentID string) ([]PaymentRecord, Totals, error) {
	records, err := eng.ledger.LoadAllRecords()
	if err != nil {
		return nil, Totals{}, errors.Wrap(err, "loading ledger")
	}
	history := make([]PaymentRecord, 0)
	var totals Totals
	for _, r := range records {
		if r.StudentID != studentID {
			continue
		}
		history = append(history, r)
		totals.Monthly += r.MonthlyFee
		totals.Annual += r.AnnualCharges
		totals.Admission += r.AdmissionFee
		totals.Received += r.ReceivedAmount
	}
	return history, totals, nil
}

// Outstanding computes the amount a student currently owes for an academic
// year: every unpaid month at the scheduled monthly amount, plus the annual
// charges and admission fee when unpaid.
func (eng *Engine) Outstanding(studentID, academicYear string) (int, error) {
	unpaid, err := eng.UnpaidMonths(studentID)
	if err != nil {
		return 0, err
	}
	status, err := eng.PaidStatus(studentID, academicYear)
	if err != nil {
		return 0, err
	}
	entry, err := eng.schedule.DetailsFor(studentID)
	if err != nil {
		return 0, err
	}

	owed := len(unpaid) * entry.MonthlyFee
	if !status.AnnualPaid {
		owed += entry.AnnualCharges
	}
	if !status.AdmissionPaid {
		owed += entry.AdmissionFee
	}
	return owed, nil
}

// Submit validates a payment and appends the resulting records to the ledger.
// Validation failures leave the ledger untouched and the same submission may
// be retried after correction. Preconditions are checked in order; the first
// failure wins.
func (eng *Engine) Submit(np NewPayment) ([]PaymentRecord, error) {
	if np.Date.IsZero() {
		np.Date = nowFunc()
	}

	// required fields first
	var missing []core.FieldError
	for field, val := range map[string]string{
		"student_name":   np.StudentName,
		"class_category": np.ClassCategory,
		"signature":      np.Signature,
	} {
		if val == "" {
			missing = append(missing, core.FieldError{Field: field, Error: requiredText})
		}
	}
	if len(missing) > 0 {
		return nil, core.NewValidationError(ErrMissingRequiredField, missing...)
	}

	// then a resolvable student identity
	studentID := np.StudentID()
	if studentID == "" {
		return nil, core.NewValidationError(ErrUnidentifiedStudent)
	}

	academicYear := AcademicYearOf(np.Date)

	// then the category-specific preconditions
	switch np.Kind {
	case KindMonthly:
		if err := eng.checkMonths(studentID, np.Months); err != nil {
			return nil, err
		}
	case KindAnnual:
		status, err := eng.PaidStatus(studentID, academicYear)
		if err != nil {
			return nil, err
		}
		if status.AnnualPaid {
			return nil, core.NewValidationError(ErrAlreadyPaid,
				core.FieldError{Field: "fee_type", Error: "annual charges have already been paid for this academic year"})
		}
	case KindAdmission:
		status, err := eng.PaidStatus(studentID, academicYear)
		if err != nil {
			return nil, err
		}
		if status.AdmissionPaid {
			return nil, core.NewValidationError(ErrAlreadyPaid,
				core.FieldError{Field: "fee_type", Error: "admission fee has already been paid for this academic year"})
		}
	default:
		return nil, ErrUnknownKind
	}

	amount, err := eng.schedule.AmountFor(studentID, np.Kind)
	if err != nil {
		return nil, err
	}

	records := eng.buildRecords(np, studentID, academicYear, amount)
	if err = eng.ledger.AppendRecords(records...); err != nil {
		return nil, errors.Wrap(err, "appending to ledger")
	}

	eng.sendReceipt(np, records)
	return records, nil
}

// checkMonths rejects a monthly submission unless at least one month is
// selected and every selected month is distinct and still unpaid.
func (eng *Engine) checkMonths(studentID string, selected []Month) error {
	if len(selected) == 0 {
		return core.NewValidationError(ErrNoMonthSelected,
			core.FieldError{Field: "months", Error: "select a month"})
	}
	unpaid, err := eng.UnpaidMonths(studentID)
	if err != nil {
		return err
	}
	unpaidSet := make(map[Month]bool, len(unpaid))
	for _, m := range unpaid {
		unpaidSet[m] = true
	}
	seen := make(map[Month]bool, len(selected))
	for _, m := range selected {
		if !IsCalendarMonth(m) {
			return core.NewValidationError(ErrNoMonthSelected,
				core.FieldError{Field: "months", Error: fmt.Sprintf("%q is not a calendar month", m)})
		}
		if seen[m] {
			return core.NewValidationError(ErrNoMonthSelected,
				core.FieldError{Field: "months", Error: fmt.Sprintf("%s is selected more than once", m)})
		}
		seen[m] = true
		if !unpaidSet[m] {
			return core.NewValidationError(ErrNoMonthSelected,
				core.FieldError{Field: "months", Error: fmt.Sprintf("%s has already been paid", m)})
		}
	}
	return nil
}

func (eng *Engine) buildRecords(np NewPayment, studentID, academicYear string, amount int) []PaymentRecord {
	receiptNo := newReceiptNo().String()
	base := PaymentRecord{
		StudentID:      studentID,
		StudentName:    np.StudentName,
		ClassCategory:  np.ClassCategory,
		ClassSection:   np.ClassSection,
		ReceivedAmount: amount,
		PaymentMethod:  np.PaymentMethod,
		Date:           np.Date,
		Signature:      np.Signature,
		EntryTimestamp: nowFunc(),
		AcademicYear:   academicYear,
		ReceiptNo:      receiptNo,
	}

	switch np.Kind {
	case KindAnnual:
		base.Month = MonthAnnual
		base.AnnualCharges = amount
		return []PaymentRecord{base}
	case KindAdmission:
		base.Month = MonthAdmission
		base.AdmissionFee = amount
		return []PaymentRecord{base}
	default:
		records := make([]PaymentRecord, 0, len(np.Months))
		for _, m := range np.Months {
			r := base
			r.Month = m
			r.MonthlyFee = amount
			records = append(records, r)
		}
		return records
	}
}

func (eng *Engine) sendReceipt(np NewPayment, records []PaymentRecord) {
	if eng.mailSvc == nil || eng.conf == nil || eng.conf.ReceiptEmail == "" {
		return
	}
	var total int
	for _, r := range records {
		total += r.ReceivedAmount
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: eng.conf.ReceiptEmail}},
		Subject: fmt.Sprintf("Fee receipt %s - %s", records[0].ReceiptNo, np.StudentName),
		TextContent: fmt.Sprintf(
			"Received Rs. %d from %s (%s) via %s on %s.\nReceipt no: %s\nSigned: %s\n",
			total, np.StudentName, np.ClassCategory, np.PaymentMethod,
			records[0].Date.Format(DateLayout), records[0].ReceiptNo, np.Signature,
		),
	}
	eng.mailSvc.SendMessages(msg)
}

const requiredText = "this field is required"
