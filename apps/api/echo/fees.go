package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core"
	"github.com/trezcool/malipo/core/fee"
)

type feeApi struct {
	engine *fee.Engine
}

func registerFeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, engine *fee.Engine) {
	api := feeApi{engine: engine}

	pg := g.Group("/payments", jwt)
	pg.POST("", api.submit)
	pg.GET("", api.queryAll, adminMiddleware())

	sg := g.Group("/students/:id", jwt)
	sg.GET("/status", api.status)
	sg.GET("/history", api.history)

	fg := g.Group("/schedule", jwt, adminMiddleware())
	fg.GET("", api.querySchedule)
	fg.GET("/:id", api.scheduleDetails)
	fg.PUT("", api.setSchedule)
}

type (
	StatusResponse struct {
		StudentID    string `json:"student_id"`
		AcademicYear string `json:"academic_year"`
		fee.PaidStatus
		UnpaidMonths []fee.Month `json:"unpaid_months"`
		Outstanding  int         `json:"outstanding"`
	}

	HistoryResponse struct {
		Records    []fee.PaymentRecord `json:"records"`
		Totals     fee.Totals          `json:"totals"`
		PaidMonths []fee.Month         `json:"paid_months"`
	}

	ScheduleDetailResponse struct {
		StudentID   string            `json:"student_id"`
		HasOverride bool              `json:"has_override"`
		Entry       fee.ScheduleEntry `json:"entry"`
	}
)

// Handlers

func (api *feeApi) submit(ctx echo.Context) error {
	var data fee.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	records, err := api.engine.Submit(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, records)
}

func (api *feeApi) queryAll(ctx echo.Context) error {
	records, err := api.engine.AllRecords()
	if err != nil {
		return errors.Wrap(err, "loading payment records")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *feeApi) status(ctx echo.Context) error {
	studentID := ctx.Param("id")

	date := time.Now()
	if raw := ctx.QueryParam("date"); raw != "" {
		var err error
		if date, err = time.Parse(fee.DateLayout, raw); err != nil {
			return core.NewValidationError(nil,
				core.FieldError{Field: "date", Error: "expected format " + fee.DateLayout})
		}
	}
	academicYear := fee.AcademicYearOf(date)

	paid, err := api.engine.PaidStatus(studentID, academicYear)
	if err != nil {
		return errors.Wrap(err, "deriving paid status")
	}
	unpaid, err := api.engine.UnpaidMonths(studentID)
	if err != nil {
		return errors.Wrap(err, "deriving unpaid months")
	}
	owed, err := api.engine.Outstanding(studentID, academicYear)
	if err != nil {
		return errors.Wrap(err, "computing outstanding balance")
	}

	return ctx.JSON(http.StatusOK, StatusResponse{
		StudentID:    studentID,
		AcademicYear: academicYear,
		PaidStatus:   paid,
		UnpaidMonths: unpaid,
		Outstanding:  owed,
	})
}

func (api *feeApi) history(ctx echo.Context) error {
	studentID := ctx.Param("id")

	records, totals, err := api.engine.History(studentID)
	if err != nil {
		return errors.Wrap(err, "loading payment history")
	}
	paidMonths, err := api.engine.PaidMonths(studentID)
	if err != nil {
		return errors.Wrap(err, "deriving paid months")
	}

	return ctx.JSON(http.StatusOK, HistoryResponse{
		Records:    records,
		Totals:     totals,
		PaidMonths: paidMonths,
	})
}

func (api *feeApi) querySchedule(ctx echo.Context) error {
	entries, err := api.engine.Schedule().All()
	if err != nil {
		return errors.Wrap(err, "loading fee schedule")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *feeApi) scheduleDetails(ctx echo.Context) error {
	studentID := ctx.Param("id")

	entry, err := api.engine.Schedule().DetailsFor(studentID)
	if err != nil {
		return errors.Wrap(err, "loading fee details")
	}
	hasOverride, err := api.engine.Schedule().HasOverride(studentID)
	if err != nil {
		return errors.Wrap(err, "checking fee override")
	}

	return ctx.JSON(http.StatusOK, ScheduleDetailResponse{
		StudentID:   studentID,
		HasOverride: hasOverride,
		Entry:       entry,
	})
}

func (api *feeApi) setSchedule(ctx echo.Context) error {
	var data fee.NewScheduleEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScheduleEntry")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	studentID, err := api.engine.Schedule().SetOverride(data)
	if err != nil {
		return errors.Wrap(err, "setting fee override")
	}
	entry, err := api.engine.Schedule().DetailsFor(studentID)
	if err != nil {
		return errors.Wrap(err, "loading fee details")
	}

	return ctx.JSON(http.StatusOK, ScheduleDetailResponse{
		StudentID:   studentID,
		HasOverride: true,
		Entry:       entry,
	})
}
