package chi

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"
)

// Limits bound user supplied query parameters.
type Limits struct {
	MaxQueryLen int
	MaxK        int
	MaxSteps    int
}

// DefaultLimits apply when a Limits field is zero.
var DefaultLimits = Limits{MaxQueryLen: 512, MaxK: 100, MaxSteps: 50}

func (l Limits) withDefaults() Limits {
	if l.MaxQueryLen <= 0 {
		l.MaxQueryLen = DefaultLimits.MaxQueryLen
	}
	if l.MaxK <= 0 {
		l.MaxK = DefaultLimits.MaxK
	}
	if l.MaxSteps <= 0 {
		l.MaxSteps = DefaultLimits.MaxSteps
	}
	return l
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// paramError is a client-facing binding or validation failure.
type paramError struct {
	name string
	msg  string
}

func (e *paramError) Error() string { return fmt.Sprintf("invalid parameter '%s': %s", e.name, e.msg) }

// queryParam binds the q parameter. Present means non-empty.
func queryParam(r *http.Request, required bool, maxLen int) (string, error) {
	var q string
	if err := runtime.BindQueryParameter("form", true, required, "q", r.URL.Query(), &q); err != nil {
		if required && !r.URL.Query().Has("q") {
			return "", &paramError{name: "q", msg: "missing required query param"}
		}
		return "", &paramError{name: "q", msg: err.Error()}
	}
	if q == "" && !required {
		return "", nil
	}
	if err := getValidator().Var(q, fmt.Sprintf("required,max=%d", maxLen)); err != nil {
		return "", &paramError{name: "q", msg: describe(err, maxLen)}
	}
	return q, nil
}

// intParam binds an optional positive integer, falling back to def.
func intParam(r *http.Request, name string, def, maxVal int) (int, error) {
	v := def
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return 0, &paramError{name: name, msg: "must be an integer"}
	}
	if err := getValidator().Var(v, fmt.Sprintf("min=1,max=%d", maxVal)); err != nil {
		return 0, &paramError{name: name, msg: fmt.Sprintf("must be between 1 and %d", maxVal)}
	}
	return v, nil
}

func describe(err error, maxLen int) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return "must not be empty"
		case "max":
			return fmt.Sprintf("must be at most %d characters", maxLen)
		}
	}
	return "invalid value"
}

func writeParamError(w http.ResponseWriter, err error) {
	var pe *paramError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, pe.Error())
		return
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request")
}
