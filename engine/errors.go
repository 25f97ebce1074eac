package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNoDataset is returned by every query until the first successful load.
var ErrNoDataset = errors.New("no dataset loaded")

// InvalidParameterError names the request parameter that failed validation.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// NotFoundError reports an unknown id. It is an ordinary outcome; list
// queries return an empty list instead.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such %s: %s", e.Kind, e.ID)
}

func missing(param string) error {
	return &InvalidParameterError{Param: param, Reason: "required"}
}

func requireParam(param, v string) error {
	if strings.TrimSpace(v) == "" {
		return missing(param)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("param"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// validateRequest runs struct-tag validation and reports the first failure
// as an *InvalidParameterError.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		switch fe.Tag() {
		case "required":
			reason = "required"
		case "nefield":
			reason = "must differ from the start stop"
		case "latitude", "longitude":
			reason = "out of range"
		}
		return &InvalidParameterError{Param: fe.Field(), Reason: reason}
	}
	return &InvalidParameterError{Param: "request", Reason: err.Error()}
}
