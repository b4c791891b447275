package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/trezcool/malipo/apps/api/echo"
	"github.com/trezcool/malipo/core"
	"github.com/trezcool/malipo/core/fee"
	"github.com/trezcool/malipo/core/user"
	emailsvc "github.com/trezcool/malipo/services/email"
	logsvc "github.com/trezcool/malipo/services/logger"
	"github.com/trezcool/malipo/storage/database"
	dummydb "github.com/trezcool/malipo/storage/database/dummy"
	sqlxrepos "github.com/trezcool/malipo/storage/database/sqlx"
	"github.com/trezcool/malipo/storage/flatfile"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(std, conf)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	// set up storage
	repos, closeStorage, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = closeStorage(); err != nil {
			logger.Error(fmt.Sprintf("closing storage: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(repos.user)
	engine := fee.NewEngine(repos.ledger, fee.NewSchedule(repos.schedule), mailSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:    conf,
			Logger:  logger,
			UserSvc: usrSvc,
			Engine:  engine,
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

type repositories struct {
	ledger   fee.LedgerRepository
	schedule fee.ScheduleRepository
	user     user.Repository
}

// setUpStorage selects the storage backend from config and returns the wired
// repositories along with a close function.
func setUpStorage(conf *core.Config) (repositories, func() error, error) {
	noop := func() error { return nil }

	switch conf.Storage.Backend {
	case "database":
		if err := database.CreateIfNotExist(conf); err != nil {
			return repositories{}, noop, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return repositories{}, noop, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return repositories{}, noop, err
		}
		return repositories{
			ledger:   sqlxrepos.NewLedgerRepository(db),
			schedule: sqlxrepos.NewScheduleRepository(db),
			user:     sqlxrepos.NewUserRepository(db),
		}, db.Close, nil

	case "dummy":
		db, err := dummydb.Open()
		if err != nil {
			return repositories{}, noop, err
		}
		return repositories{
			ledger:   dummydb.NewLedgerRepository(db),
			schedule: dummydb.NewScheduleRepository(db),
			user:     dummydb.NewUserRepository(db),
		}, noop, nil

	default: // flatfile
		store, err := flatfile.Open(conf.Storage)
		if err != nil {
			return repositories{}, noop, err
		}
		return repositories{
			ledger:   flatfile.NewLedgerRepository(store),
			schedule: flatfile.NewScheduleRepository(store),
			user:     flatfile.NewUserRepository(store),
		}, noop, nil
	}
}
