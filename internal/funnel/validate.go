package funnel

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gentaArnezzi/onvlo/internal/model"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// SlugValidator accepts lowercase URL slugs such as "web-design-2024".
var SlugValidator = func(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// FieldKindValidator accepts the known field kinds.
var FieldKindValidator = func(fl validator.FieldLevel) bool {
	return model.FieldKind(fl.Field().String()).Valid()
}

// NewValidator returns a validator with the funnel rules registered. Error
// fields are reported by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", SlugValidator)
	_ = v.RegisterValidation("fieldkind", FieldKindValidator)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
