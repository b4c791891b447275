package fee

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core"
)

var ErrUnknownKind = errors.New("unknown fee kind")

type (
	// ScheduleRepository persists per-student fee overrides as one flat
	// document keyed by student ID. Implementations must round-trip every
	// key and sub-field exactly.
	ScheduleRepository interface {
		LoadAllEntries() (map[string]ScheduleEntry, error)
		SaveAllEntries(entries map[string]ScheduleEntry) error
	}

	// Schedule answers fee-amount questions for a student, falling back to
	// the system defaults when no override exists.
	Schedule struct {
		repo ScheduleRepository
	}
)

func NewSchedule(repo ScheduleRepository) *Schedule {
	return &Schedule{repo: repo}
}

// AmountFor returns the fee amount charged to a student for the given kind.
func (s *Schedule) AmountFor(studentID string, kind Kind) (int, error) {
	switch kind {
	case KindMonthly, KindAnnual, KindAdmission:
	default:
		return 0, ErrUnknownKind
	}
	entries, err := s.repo.LoadAllEntries()
	if err != nil {
		return 0, errors.Wrap(err, "loading fee schedule")
	}
	if entry, ok := entries[studentID]; ok {
		return entry.AmountFor(kind), nil
	}
	return DefaultScheduleEntry().AmountFor(kind), nil
}

// DetailsFor returns a student's full override entry, or the default entry
// with "Not Set" placeholders when none exists.
func (s *Schedule) DetailsFor(studentID string) (ScheduleEntry, error) {
	entries, err := s.repo.LoadAllEntries()
	if err != nil {
		return ScheduleEntry{}, errors.Wrap(err, "loading fee schedule")
	}
	if entry, ok := entries[studentID]; ok {
		return entry, nil
	}
	return DefaultScheduleEntry(), nil
}

// HasOverride reports whether an admin has set custom fees for a student.
func (s *Schedule) HasOverride(studentID string) (bool, error) {
	entries, err := s.repo.LoadAllEntries()
	if err != nil {
		return false, errors.Wrap(err, "loading fee schedule")
	}
	_, ok := entries[studentID]
	return ok, nil
}

// NewScheduleEntry contains information needed to set a student's fees.
type NewScheduleEntry struct {
	StudentName   string `json:"student_name" validate:"required"`
	ClassCategory string `json:"class_category" validate:"required"`
	MonthlyFee    int    `json:"monthly_fee" validate:"min=0"`
	AnnualCharges int    `json:"annual_charges" validate:"min=0"`
	AdmissionFee  int    `json:"admission_fee" validate:"min=0"`
}

func (ne *NewScheduleEntry) Validate() error {
	ne.StudentName = core.CleanString(ne.StudentName)
	ne.ClassCategory = core.CleanString(ne.ClassCategory)
	return core.Validate.Struct(ne)
}

// SetOverride creates or replaces a student's fee override and returns the
// student's resolved ID. Administrative operation; access-gating is the
// caller's concern.
func (s *Schedule) SetOverride(ne NewScheduleEntry) (string, error) {
	entries, err := s.repo.LoadAllEntries()
	if err != nil {
		return "", errors.Wrap(err, "loading fee schedule")
	}
	id := ResolveStudentID(ne.StudentName, ne.ClassCategory)
	entries[id] = ScheduleEntry{
		MonthlyFee:    ne.MonthlyFee,
		AnnualCharges: ne.AnnualCharges,
		AdmissionFee:  ne.AdmissionFee,
		StudentName:   ne.StudentName,
		ClassCategory: ne.ClassCategory,
	}
	if err = s.repo.SaveAllEntries(entries); err != nil {
		return "", errors.Wrap(err, "saving fee schedule")
	}
	return id, nil
}

// All returns every student override, keyed by student ID.
func (s *Schedule) All() (map[string]ScheduleEntry, error) {
	entries, err := s.repo.LoadAllEntries()
	if err != nil {
		return nil, errors.Wrap(err, "loading fee schedule")
	}
	return entries, nil
}

// SortedIDs returns the override keys in a stable order for listings.
func SortedIDs(entries map[string]ScheduleEntry) []string {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
