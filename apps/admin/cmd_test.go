package main

import (
	"testing"

	"github.com/trezcool/malipo/core"
	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
	"github.com/trezcool/malipo/storage/flatfile"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	store, err := flatfile.Open(core.StorageConfig{
		DataDir:      t.TempDir(),
		LedgerFile:   "fees_data.csv",
		ScheduleFile: "student_fees.json",
		UsersFile:    "users.json",
	})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	schedule := fee.NewSchedule(flatfile.NewScheduleRepository(store))
	return &commandLine{
		usrSvc:   user.NewService(flatfile.NewUserRepository(store)),
		schedule: schedule,
		engine:   fee.NewEngine(flatfile.NewLedgerRepository(store), schedule, nil, nil),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()

	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if pwd, ok := tt.extra.(string); ok {
				return []byte(pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				if tt.wantErr != nil || tt.wantErrStr != "" {
					t.Errorf("cli.run() error = nil, want %v%s", tt.wantErr, tt.wantErrStr)
				}
				return
			}
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else if tt.wantErrStr != "" {
				if err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
				}
			} else {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "name but no username", args: []string{"adduser", "-name", "Clerk"}, wantErr: errHelp},
		{
			name: "no password entered", args: []string{"adduser", "-name", "Clerk", "-username", "clerk1"},
			wantErr: errHelp,
		},
		{
			name: "unknown role", args: []string{"adduser", "-name", "Clerk", "-username", "clerk1", "-roles", "boss"},
			extra: "v3ry!s3cr3t", wantErrStr: `unknown role "boss"`,
		},
		{
			name: "create staff", args: []string{"adduser", "-name", "Clerk", "-username", "clerk1"},
			extra: "v3ry!s3cr3t",
		},
		{
			name: "create admin", args: []string{"adduser", "-name", "Admin", "-username", "admin1", "-email", "admin@test.cd", "-roles", "admin"},
			extra: "v3ry!s3cr3t",
		},
	}
	runTests(t, cli, tests)

	usr, err := cli.usrSvc.GetByUsernameOrEmail("clerk1")
	if err != nil {
		t.Fatalf("GetByUsernameOrEmail() failed: %v", err)
	}
	if !usr.IsStaff() {
		t.Errorf("created user is not staff: %+v", usr)
	}
	if err = usr.CheckPassword("v3ry!s3cr3t"); err != nil {
		t.Error("created user's password does not verify")
	}

	admin, err := cli.usrSvc.GetByUsernameOrEmail("admin@test.cd")
	if err != nil {
		t.Fatalf("GetByUsernameOrEmail() failed: %v", err)
	}
	if !admin.IsAdmin() {
		t.Errorf("created user is not admin: %+v", admin)
	}
}

func Test_commandLine_setFees(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"setfees"}, wantErr: errHelp},
		{name: "name but no category", args: []string{"setfees", "-name", "John Doe"}, wantErr: errHelp},
		{name: "defaults", args: []string{"setfees", "-name", "John Doe", "-category", "Class 1"}},
		{name: "custom amounts", args: []string{"setfees", "-name", "Amina Yusuf", "-category", "KGII", "-monthly", "1500", "-annual", "1800", "-admission", "900"}},
	}
	runTests(t, cli, tests)

	id := fee.ResolveStudentID("Amina Yusuf", "KGII")
	amount, err := cli.schedule.AmountFor(id, fee.KindMonthly)
	if err != nil {
		t.Fatalf("AmountFor() failed: %v", err)
	}
	if amount != 1500 {
		t.Errorf("AmountFor() = %d, want 1500", amount)
	}

	if err = cli.listFees(); err != nil {
		t.Errorf("listFees() failed: %v", err)
	}
}

func Test_commandLine_unpaid(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"unpaid"}, wantErr: errHelp},
		{name: "name but no category", args: []string{"unpaid", "-name", "John Doe"}, wantErr: errHelp},
		{name: "unknown student", args: []string{"unpaid", "-name", "John Doe", "-category", "Class 1"}},
	}
	runTests(t, cli, tests)
}
