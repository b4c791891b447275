package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	. "github.com/trezcool/malipo/apps/api/echo"
	"github.com/trezcool/malipo/core"
	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
	emailsvc "github.com/trezcool/malipo/services/email"
	logsvc "github.com/trezcool/malipo/services/logger"
	dummydb "github.com/trezcool/malipo/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	app      Server
	conf     *core.Config
	usrRepo  user.Repository
	usrSvc   *user.Service
	ledger   fee.LedgerRepository
	schedule *fee.Schedule
	engine   *fee.Engine
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.ReceiptEmail = ""

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	usrRepo := dummydb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo)
	ledger := dummydb.NewLedgerRepository(db)
	schedule := fee.NewSchedule(dummydb.NewScheduleRepository(db))
	engine := fee.NewEngine(ledger, schedule, emailsvc.NewConsoleServiceMock(conf), conf)

	app := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logsvc.NewStdLogger(testLogger(t)),
		UserSvc:        usrSvc,
		Engine:         engine,
		DisableReqLogs: true,
	})
	return &testApp{
		app:      app,
		conf:     conf,
		usrRepo:  usrRepo,
		usrSvc:   usrSvc,
		ledger:   ledger,
		schedule: schedule,
		engine:   engine,
	}
}

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(io.Discard, "", 0)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()

	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
