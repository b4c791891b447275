package fee

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/malipo/core"
)

var (
	feeKindTag  = "feekind"
	feeKindText = "fee type must be one of: monthly, annual, admission"

	payMethodTag  = "paymethod"
	payMethodText = "invalid payment method"

	calMonthTag  = "calmonth"
	calMonthText = "invalid month name"
)

func init() {
	_ = core.Validate.RegisterValidation(feeKindTag, feeKindValidation)
	core.RegisterCustomTranslation(feeKindTag, feeKindText)

	_ = core.Validate.RegisterValidation(payMethodTag, payMethodValidation)
	core.RegisterCustomTranslation(payMethodTag, payMethodText)

	_ = core.Validate.RegisterValidation(calMonthTag, calMonthValidation)
	core.RegisterCustomTranslation(calMonthTag, calMonthText)
}

func feeKindValidation(fl validator.FieldLevel) bool {
	kind := Kind(fl.Field().String())
	for _, k := range Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func payMethodValidation(fl validator.FieldLevel) bool {
	method := fl.Field().String()
	for _, m := range PaymentMethods {
		if method == m {
			return true
		}
	}
	return false
}

func calMonthValidation(fl validator.FieldLevel) bool {
	return IsCalendarMonth(Month(fl.Field().String()))
}
