package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrSvc   *user.Service
	schedule *fee.Schedule
	engine   *fee.Engine
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -name NAME -username USERNAME [-email EMAIL] [-roles admin,staff] - create a user; the password is prompted next")
	fmt.Println("  setfees -name NAME -category CATEGORY [-monthly N] [-annual N] [-admission N] - set a student's fee override")
	fmt.Println("  listfees - list all fee overrides")
	fmt.Println("  unpaid -name NAME -category CATEGORY - show a student's unpaid months and balance")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email (optional).")
	addUserRoles := addUserCmd.String("roles", "staff", "Comma-separated roles: admin,staff.")

	setFeesCmd := flag.NewFlagSet("setfees", flag.ExitOnError)
	setFeesName := setFeesCmd.String("name", "", "The student's name.")
	setFeesCategory := setFeesCmd.String("category", "", "The student's class category.")
	setFeesMonthly := setFeesCmd.Int("monthly", fee.DefaultMonthlyFee, "The monthly fee amount.")
	setFeesAnnual := setFeesCmd.Int("annual", fee.DefaultAnnualCharges, "The annual charges amount.")
	setFeesAdmission := setFeesCmd.Int("admission", fee.DefaultAdmissionFee, "The admission fee amount.")

	unpaidCmd := flag.NewFlagSet("unpaid", flag.ExitOnError)
	unpaidName := unpaidCmd.String("name", "", "The student's name.")
	unpaidCategory := unpaidCmd.String("category", "", "The student's class category.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserUname == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserUname, *addUserEmail, *addUserRoles, pwd)

	case "setfees":
		if err := setFeesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setFeesName == "" || *setFeesCategory == "" {
			setFeesCmd.Usage()
			return errHelp
		}
		return cli.setFees(*setFeesName, *setFeesCategory, *setFeesMonthly, *setFeesAnnual, *setFeesAdmission)

	case "listfees":
		return cli.listFees()

	case "unpaid":
		if err := unpaidCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *unpaidName == "" || *unpaidCategory == "" {
			unpaidCmd.Usage()
			return errHelp
		}
		return cli.unpaid(*unpaidName, *unpaidCategory)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) addUser(name, uname, email, roles, pwd string) error {
	nu := user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	for _, role := range strings.Split(roles, ",") {
		switch strings.TrimSpace(role) {
		case "admin":
			nu.Roles = append(nu.Roles, user.RoleAdmin)
		case "staff":
			nu.Roles = append(nu.Roles, user.RoleStaff)
		case "":
		default:
			return fmt.Errorf("unknown role %q", role)
		}
	}
	if err := nu.Validate(cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(nu)
	if err != nil {
		return err
	}
	fmt.Printf("user %q created (id=%d)\n", usr.Username, usr.ID)
	return nil
}

func (cli *commandLine) setFees(name, category string, monthly, annual, admission int) error {
	ne := fee.NewScheduleEntry{
		StudentName:   name,
		ClassCategory: category,
		MonthlyFee:    monthly,
		AnnualCharges: annual,
		AdmissionFee:  admission,
	}
	if err := ne.Validate(); err != nil {
		return err
	}
	id, err := cli.schedule.SetOverride(ne)
	if err != nil {
		return err
	}
	fmt.Printf("fees set for %s (%s): id=%s monthly=%d annual=%d admission=%d\n",
		name, category, id, monthly, annual, admission)
	return nil
}

func (cli *commandLine) listFees() error {
	entries, err := cli.schedule.All()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no fee overrides set")
		return nil
	}
	for _, id := range fee.SortedIDs(entries) {
		entry := entries[id]
		fmt.Printf("%s  %-30s %-20s monthly=%d annual=%d admission=%d\n",
			id, entry.StudentName, entry.ClassCategory,
			entry.MonthlyFee, entry.AnnualCharges, entry.AdmissionFee)
	}
	return nil
}

func (cli *commandLine) unpaid(name, category string) error {
	id := fee.ResolveStudentID(name, category)
	academicYear := fee.AcademicYearOf(time.Now())

	months, err := cli.engine.UnpaidMonths(id)
	if err != nil {
		return err
	}
	status, err := cli.engine.PaidStatus(id, academicYear)
	if err != nil {
		return err
	}
	owed, err := cli.engine.Outstanding(id, academicYear)
	if err != nil {
		return err
	}

	fmt.Printf("student %s (%s): id=%s year=%s\n", name, category, id, academicYear)
	if len(months) == 0 {
		fmt.Println("all months paid")
	} else {
		names := make([]string, 0, len(months))
		for _, m := range months {
			names = append(names, string(m))
		}
		fmt.Printf("unpaid months: %s\n", strings.Join(names, ", "))
	}
	fmt.Printf("annual paid: %t, admission paid: %t\n", status.AnnualPaid, status.AdmissionPaid)
	fmt.Printf("outstanding: %d\n", owed)
	return nil
}
