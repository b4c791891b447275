package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/malipo/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func init() {
	_ = core.Validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(allRolesTag, allRolesText)

	core.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

// allRolesValidation checks that all given roles are known.
func allRolesValidation(fl validator.FieldLevel) bool {
	if roles, ok := fl.Field().Interface().([]string); ok {
		for _, role := range roles {
			if !isKnownRole(role) {
				return false
			}
		}
		return true
	}
	return false
}

func isKnownRole(role string) bool {
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// newUserStructValidation applies the password policy against the whole struct
// so the password can be compared to the other user attributes.
func newUserStructValidation(sl validator.StructLevel) {
	nu := sl.Current().Interface().(NewUser)
	if nu.Password == "" {
		return
	}

	if len(nu.Password) < pwdMinLen {
		sl.ReportError(nu.Password, "password", "Password", pwdMinLenTag, "")
	}
	if isAllNumeric(nu.Password) {
		sl.ReportError(nu.Password, "password", "Password", pwdNotAllNumTag, "")
	}
	for _, attr := range []string{nu.Name, nu.Username, nu.Email} {
		if attr == "" {
			continue
		}
		if similarity(strings.ToLower(nu.Password), strings.ToLower(attr)) > pwdMaxSim {
			sl.ReportError(nu.Password, "password", "Password", pwdAttrSimTag, "")
			break
		}
	}
}

func isAllNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
