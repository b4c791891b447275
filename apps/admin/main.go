package main

import (
	"log"
	"os"

	"github.com/trezcool/malipo/core"
	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
	"github.com/trezcool/malipo/storage/flatfile"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// the CLI operates on the flat files directly
	store, err := flatfile.Open(conf.Storage)
	errAndDie(err)

	schedule := fee.NewSchedule(flatfile.NewScheduleRepository(store))
	cli := commandLine{
		usrSvc:   user.NewService(flatfile.NewUserRepository(store)),
		schedule: schedule,
		engine:   fee.NewEngine(flatfile.NewLedgerRepository(store), schedule, nil, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
