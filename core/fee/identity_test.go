package fee

import "testing"

func TestResolveStudentID(t *testing.T) {
	tests := []struct {
		name     string
		student  string
		category string
		want     string
	}{
		{name: "known vector", student: "John Doe", category: "Class 1", want: "2D1DD6CF"},
		{name: "case sensitive", student: "john doe", category: "Class 1", want: "1BB39F0F"},
		{name: "category changes identity", student: "John Doe", category: "Class 2", want: "381BE210"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStudentID(tt.student, tt.category); got != tt.want {
				t.Errorf("ResolveStudentID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveStudentID_deterministic(t *testing.T) {
	first := ResolveStudentID("Amina Yusuf", "KGII")
	for i := 0; i < 10; i++ {
		if got := ResolveStudentID("Amina Yusuf", "KGII"); got != first {
			t.Fatalf("ResolveStudentID() = %v on run %d, want %v", got, i, first)
		}
	}
	if len(first) != 8 {
		t.Errorf("len(id) = %d, want 8", len(first))
	}
}
