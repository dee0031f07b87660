package internshipValidator

import (
	"fmt"
	"internhub/models"
	"internhub/repository"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		_, err := models.ParseStatus(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("sortable", func(fl validator.FieldLevel) bool {
		return repository.IsSortable(fl.Field().String())
	})
	v.RegisterValidation("bulkop", func(fl validator.FieldLevel) bool {
		return models.BulkOperationType(strings.ToUpper(fl.Field().String())).IsValid()
	})
	return v
}

// check runs the struct tags of req and returns one message per failing field.
func check(req interface{}) map[string]string {
	errors := make(map[string]string)
	err := validate.Struct(req)
	if err == nil {
		return errors
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["request"] = err.Error()
		return errors
	}
	for _, fe := range fieldErrors {
		errors[fieldName(fe)] = describe(fe)
	}
	return errors
}

// fieldName keeps the index of slice elements, e.g. internshipIds[2].
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD!", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s%s!", fe.Field(), fe.Param(), unit(fe.Kind()))
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s%s!", fe.Field(), fe.Param(), unit(fe.Kind()))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s!", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", fe.Field(), fe.Param())
	case "status":
		return fmt.Sprintf("Unknown status %q!", fe.Value())
	case "sortable":
		return fmt.Sprintf("Cannot sort by %q!", fe.Value())
	case "bulkop":
		return fmt.Sprintf("Unknown operation type %q!", fe.Value())
	}
	return fmt.Sprintf("%s is invalid!", fe.Field())
}

func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice:
		return " items"
	}
	return ""
}

// parseDate returns nil for an empty value. Format errors are caught by the
// datetime tag first.
func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}
