package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/shrimpsizemoose/gradebook/internal/models"
)

var (
	// custom validation tags
	notBlankTag = "notblank"
	groupTag    = "group"
	weekTag     = "week"
	gradeTag    = "grade"
)

// Validator checks a single entity. It reports every violated rule, not only the first.
type Validator[E any] interface {
	Validate(entity E) error
}

// Bounds are the inclusive ranges enforced by the group, week and grade tags.
type Bounds struct {
	GroupMin int     `toml:"group_min"`
	GroupMax int     `toml:"group_max"`
	WeekMin  int     `toml:"week_min"`
	WeekMax  int     `toml:"week_max"`
	GradeMin float64 `toml:"grade_min"`
	GradeMax float64 `toml:"grade_max"`
}

func DefaultBounds() Bounds {
	return Bounds{
		GroupMin: 111,
		GroupMax: 937,
		WeekMin:  1,
		WeekMax:  52,
		GradeMin: 0,
		GradeMax: 10,
	}
}

// Engine owns a configured validator.Validate shared by the entity validators.
type Engine struct {
	validate   *validator.Validate
	translator ut.Translator
	bounds     Bounds
}

func NewEngine(bounds Bounds) *Engine {
	validate := validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	e := &Engine{validate: validate, translator: translator, bounds: bounds}

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	e.registerTranslation(notBlankTag, "{0} must not be blank")

	_ = validate.RegisterValidation(groupTag, e.groupValidation)
	e.registerTranslation(groupTag, fmt.Sprintf("{0} must be between %d and %d", bounds.GroupMin, bounds.GroupMax))

	_ = validate.RegisterValidation(weekTag, e.weekValidation)
	e.registerTranslation(weekTag, fmt.Sprintf("{0} must be a week between %d and %d", bounds.WeekMin, bounds.WeekMax))

	_ = validate.RegisterValidation(gradeTag, e.gradeValidation)
	e.registerTranslation(gradeTag, fmt.Sprintf("{0} must be between %g and %g", bounds.GradeMin, bounds.GradeMax))

	return e
}

// registerTranslation registers a custom translation for the specified validation tag.
func (e *Engine) registerTranslation(tag, text string) {
	_ = e.validate.RegisterTranslation(
		tag, e.translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates any tagged struct and folds validator errors into a *ValidationError.
func (e *Engine) Struct(s interface{}) error {
	err := e.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field: fe.Field(),
			Error: fe.Translate(e.translator),
		})
	}
	return NewValidationError(fields...)
}

func (e *Engine) groupValidation(fl validator.FieldLevel) bool {
	group := int(fl.Field().Int())
	return group >= e.bounds.GroupMin && group <= e.bounds.GroupMax
}

func (e *Engine) weekValidation(fl validator.FieldLevel) bool {
	week := int(fl.Field().Int())
	return week >= e.bounds.WeekMin && week <= e.bounds.WeekMax
}

func (e *Engine) gradeValidation(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	return value >= e.bounds.GradeMin && value <= e.bounds.GradeMax
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

type structValidator[E any] struct {
	engine *Engine
}

func (v structValidator[E]) Validate(entity E) error {
	return v.engine.Struct(entity)
}

// StudentValidator checks id, name and group, in that order.
func StudentValidator(e *Engine) Validator[models.Student] {
	return structValidator[models.Student]{engine: e}
}

// AssignmentValidator checks id, description, deadline and startline.
func AssignmentValidator(e *Engine) Validator[models.Assignment] {
	return structValidator[models.Assignment]{engine: e}
}

// GradeValidator checks the key, value and submission week. Feedback may be empty.
func GradeValidator(e *Engine) Validator[models.Grade] {
	return structValidator[models.Grade]{engine: e}
}
