package fee

import (
	"testing"
	"time"
)

func TestAcademicYearOf(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{name: "March stays in previous year", date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), want: "2023-2024"},
		{name: "March 31 stays in previous year", date: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), want: "2023-2024"},
		{name: "April 1 starts a new year", date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), want: "2024-2025"},
		{name: "mid year", date: time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC), want: "2024-2025"},
		{name: "December", date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), want: "2024-2025"},
		{name: "January rolls back", date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), want: "2024-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AcademicYearOf(tt.date); got != tt.want {
				t.Errorf("AcademicYearOf(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestMonths(t *testing.T) {
	if len(Months) != 12 {
		t.Fatalf("len(Months) = %d, want 12", len(Months))
	}
	if Months[0] != April {
		t.Errorf("Months[0] = %v, want %v", Months[0], April)
	}
	if Months[11] != March {
		t.Errorf("Months[11] = %v, want %v", Months[11], March)
	}
}

func TestIsCalendarMonth(t *testing.T) {
	for _, m := range Months {
		if !IsCalendarMonth(m) {
			t.Errorf("IsCalendarMonth(%v) = false, want true", m)
		}
	}
	for _, m := range []Month{MonthAnnual, MonthAdmission, "SMARCH", ""} {
		if IsCalendarMonth(m) {
			t.Errorf("IsCalendarMonth(%v) = true, want false", m)
		}
	}
}
