package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Mobile numbers: optional leading +, then 7 to 15 digits with optional spaces or dashes
	MobilePattern = `^\+?[0-9][0-9 \-]{5,18}[0-9]$`

	// PIN / postal codes
	PinCodePattern = `^[0-9A-Za-z \-]{3,10}$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Mobile  *regexp.Regexp
	PinCode *regexp.Regexp
}{
	Mobile:  regexp.MustCompile(MobilePattern),
	PinCode: regexp.MustCompile(PinCodePattern),
}

var validate = New()

// New returns a validator that reports fields by their form (or json) name
// and knows the custom "mobile" and "pincode" rules.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	registerRules(v)
	return v
}

// RegisterGinRules installs the custom rules on gin's binding validator.
func RegisterGinRules() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
		registerRules(v)
	}
}

func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Mobile.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.PinCode.MatchString(fl.Field().String())
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// Struct validates s with the shared validator.
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// MissingFields lists the fields that failed a "required" rule, sorted.
func MissingFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	var out []string
	for _, fe := range verrs {
		if strings.HasPrefix(fe.Tag(), "required") {
			out = append(out, fe.Field())
		}
	}
	sort.Strings(out)
	return out
}

// Messages renders every failure as a readable sentence.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err == nil {
			return nil
		}
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FormatFieldError(fe))
	}
	return out
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "mobile":
		return e.Field() + " must be a valid mobile number"
	case "pincode":
		return e.Field() + " must be a valid PIN code"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// TrimStrings trims every exported string field of the struct pointed to by ptr.
func TrimStrings(ptr interface{}) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
