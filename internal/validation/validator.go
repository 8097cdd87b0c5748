// Package validation wraps go-playground/validator with the organizer's
// custom tags: category_name and entry_name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"organizer-api/internal/utils"
)

var (
	inst *validator.Validate
	once sync.Once
)

func initValidator() {
	inst = validator.New(validator.WithRequiredStructEnabled())
	inst.SetTagName("validate")

	// report json field names
	inst.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = inst.RegisterValidation("category_name", func(fl validator.FieldLevel) bool {
		return utils.ValidCategoryName(fl.Field().String()) == nil
	})
	_ = inst.RegisterValidation("entry_name", func(fl validator.FieldLevel) bool {
		return utils.ValidEntryName(fl.Field().String()) == nil
	})
}

// Engine returns the shared validator instance.
func Engine() *validator.Validate {
	once.Do(initValidator)
	return inst
}

// ValidateStruct runs struct validation and flattens the result into one
// readable error.
func ValidateStruct(s any) error {
	err := Engine().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for field, msg := range Errors(verrs) {
		msgs = append(msgs, field+": "+msg)
	}
	sort.Strings(msgs)
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// Errors maps namespaced field names to messages.
func Errors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[trimNamespace(fe.Namespace())] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "category_name":
		return "must be a relative folder name without '..'"
	case "entry_name":
		return "must be a single file or folder name"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag()
	}
}

// drops the root struct name
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
