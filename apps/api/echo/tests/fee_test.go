package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
	testutil "github.com/trezcool/malipo/tests"
)

var paymentBody = []byte(`{
	"student_name": "John Doe",
	"class_category": "Class 1",
	"class_section": "A",
	"fee_type": "monthly",
	"months": ["JUNE", "JULY"],
	"payment_method": "Cash",
	"date": "2024-06-15T00:00:00Z",
	"signature": "clerk"
}`)

func Test_feeApi_submit(t *testing.T) {
	ta := setup(t)

	staff := testutil.CreateUser(t, ta.usrRepo, "Clerk", "clerk1", "clerk@test.cd", "v3ry!s3cr3t", user.StaffRoles, true)
	token := getToken(t, ta.conf, staff)

	// auth required
	req, rec := newRequest(http.MethodPost, "/v1/payments", paymentBody)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	// submit two months
	req, rec = newAuthRequest(http.MethodPost, "/v1/payments", token, paymentBody)
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var records []fee.PaymentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if assert.Len(t, records, 2) {
		assert.Equal(t, fee.ResolveStudentID("John Doe", "Class 1"), records[0].StudentID)
		assert.Equal(t, fee.June, records[0].Month)
		assert.Equal(t, fee.July, records[1].Month)
		assert.Equal(t, fee.DefaultMonthlyFee, records[0].MonthlyFee)
		assert.Equal(t, "2024-2025", records[0].AcademicYear)
		assert.NotEmpty(t, records[0].ReceiptNo)
		assert.Equal(t, records[0].ReceiptNo, records[1].ReceiptNo)
	}

	// paying JUNE again is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/payments", token, paymentBody)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"months": "JUNE has already been paid"}),
	}, rec)

	// missing signature
	req, rec = newAuthRequest(http.MethodPost, "/v1/payments", token, []byte(`{
		"student_name": "John Doe",
		"class_category": "Class 1",
		"fee_type": "monthly",
		"months": ["MAY"],
		"payment_method": "Cash"
	}`))
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_feeApi_submitAnnual(t *testing.T) {
	ta := setup(t)

	staff := testutil.CreateUser(t, ta.usrRepo, "Clerk", "clerk1", "clerk@test.cd", "v3ry!s3cr3t", user.StaffRoles, true)
	token := getToken(t, ta.conf, staff)

	body := []byte(`{
		"student_name": "John Doe",
		"class_category": "Class 1",
		"fee_type": "annual",
		"payment_method": "Cash",
		"date": "2024-06-15T00:00:00Z",
		"signature": "clerk"
	}`)

	req, rec := newAuthRequest(http.MethodPost, "/v1/payments", token, body)
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var records []fee.PaymentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if assert.Len(t, records, 1) {
		assert.Equal(t, fee.MonthAnnual, records[0].Month)
		assert.Equal(t, fee.DefaultAnnualCharges, records[0].AnnualCharges)
	}

	// already paid for this academic year
	req, rec = newAuthRequest(http.MethodPost, "/v1/payments", token, body)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"fee_type": "annual charges have already been paid for this academic year"}),
	}, rec)
}

func Test_feeApi_status(t *testing.T) {
	ta := setup(t)

	staff := testutil.CreateUser(t, ta.usrRepo, "Clerk", "clerk1", "clerk@test.cd", "v3ry!s3cr3t", user.StaffRoles, true)
	token := getToken(t, ta.conf, staff)

	id := fee.ResolveStudentID("John Doe", "Class 1")
	testutil.SeedPayment(t, ta.ledger, "John Doe", "Class 1", fee.June, 2000, 0, 0, "2024-2025")
	testutil.SeedPayment(t, ta.ledger, "John Doe", "Class 1", fee.MonthAnnual, 0, 2000, 0, "2024-2025")

	req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+id+"/status?date=2024-06-20", token)
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		StudentID     string      `json:"student_id"`
		AcademicYear  string      `json:"academic_year"`
		AnnualPaid    bool        `json:"annual_paid"`
		AdmissionPaid bool        `json:"admission_paid"`
		UnpaidMonths  []fee.Month `json:"unpaid_months"`
		Outstanding   int         `json:"outstanding"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.Equal(t, id, status.StudentID)
	assert.Equal(t, "2024-2025", status.AcademicYear)
	assert.True(t, status.AnnualPaid)
	assert.False(t, status.AdmissionPaid)
	assert.Len(t, status.UnpaidMonths, 11)
	assert.NotContains(t, status.UnpaidMonths, fee.June)
	assert.Equal(t, 11*fee.DefaultMonthlyFee+fee.DefaultAdmissionFee, status.Outstanding)

	// malformed date
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+id+"/status?date=20-06-2024", token)
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_feeApi_history(t *testing.T) {
	ta := setup(t)

	staff := testutil.CreateUser(t, ta.usrRepo, "Clerk", "clerk1", "clerk@test.cd", "v3ry!s3cr3t", user.StaffRoles, true)
	token := getToken(t, ta.conf, staff)

	id := fee.ResolveStudentID("John Doe", "Class 1")
	testutil.SeedPayment(t, ta.ledger, "John Doe", "Class 1", fee.June, 2000, 0, 0, "2024-2025")
	testutil.SeedPayment(t, ta.ledger, "John Doe", "Class 1", fee.July, 2000, 0, 0, "2024-2025")
	testutil.SeedPayment(t, ta.ledger, "Jane Roe", "Class 2", fee.June, 2000, 0, 0, "2024-2025")

	req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+id+"/history", token)
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Records    []fee.PaymentRecord `json:"records"`
		Totals     fee.Totals          `json:"totals"`
		PaidMonths []fee.Month         `json:"paid_months"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.Len(t, history.Records, 2)
	assert.Equal(t, 4000, history.Totals.Monthly)
	assert.Equal(t, 4000, history.Totals.Received)
	assert.Equal(t, []fee.Month{fee.June, fee.July}, history.PaidMonths)
}

func Test_feeApi_queryPayments(t *testing.T) {
	ta := setup(t)

	staff := testutil.CreateUser(t, ta.usrRepo, "Clerk", "clerk1", "clerk@test.cd", "v3ry!s3cr3t", user.StaffRoles, true)
	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin1", "admin@test.cd", "v3ry!s3cr3t", user.AdminRoles, true)

	testutil.SeedPayment(t, ta.ledger, "John Doe", "Class 1", fee.June, 2000, 0, 0, "2024-2025")
	testutil.SeedPayment(t, ta.ledger, "Jane Roe", "Class 2", fee.June, 2000, 0, 0, "2024-2025")

	// admin only
	req, rec := newAuthRequest(http.MethodGet, "/v1/payments", getToken(t, ta.conf, staff))
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/payments", getToken(t, ta.conf, admin))
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var records []fee.PaymentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.Len(t, records, 2)
}

func Test_feeApi_schedule(t *testing.T) {
	ta := setup(t)

	staff := testutil.CreateUser(t, ta.usrRepo, "Clerk", "clerk1", "clerk@test.cd", "v3ry!s3cr3t", user.StaffRoles, true)
	admin := testutil.CreateUser(t, ta.usrRepo, "Admin", "admin1", "admin@test.cd", "v3ry!s3cr3t", user.AdminRoles, true)
	adminToken := getToken(t, ta.conf, admin)

	id := fee.ResolveStudentID("John Doe", "Class 1")

	// admin only
	req, rec := newAuthRequest(http.MethodGet, "/v1/schedule", getToken(t, ta.conf, staff))
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// no override yet: defaults with the Not Set placeholder
	req, rec = newAuthRequest(http.MethodGet, "/v1/schedule/"+id, adminToken)
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var details struct {
		StudentID   string            `json:"student_id"`
		HasOverride bool              `json:"has_override"`
		Entry       fee.ScheduleEntry `json:"entry"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.False(t, details.HasOverride)
	assert.Equal(t, fee.NotSet, details.Entry.StudentName)
	assert.Equal(t, fee.DefaultMonthlyFee, details.Entry.MonthlyFee)

	// set an override
	req, rec = newAuthRequest(http.MethodPut, "/v1/schedule", adminToken, []byte(`{
		"student_name": "John Doe",
		"class_category": "Class 1",
		"monthly_fee": 1500,
		"annual_charges": 1800,
		"admission_fee": 900
	}`))
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.Equal(t, id, details.StudentID)
	assert.True(t, details.HasOverride)
	assert.Equal(t, 1500, details.Entry.MonthlyFee)

	// listed now
	req, rec = newAuthRequest(http.MethodGet, "/v1/schedule", adminToken)
	ta.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var entries map[string]fee.ScheduleEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	assert.Len(t, entries, 1)
	assert.Equal(t, "John Doe", entries[id].StudentName)
}
