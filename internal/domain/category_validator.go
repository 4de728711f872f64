package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	categoryNameMinLength = 1
	categoryNameMaxLength = 255
)

// CategoryValidator checks a Category and reports violations to a
// ValidationHandler. It never stops at the first failure, except that the
// length of a missing name is not checked.
type CategoryValidator struct {
	category *Category
	handler  ValidationHandler
}

// NewCategoryValidator returns a validator for c reporting to h.
func NewCategoryValidator(c *Category, h ValidationHandler) *CategoryValidator {
	return &CategoryValidator{category: c, handler: h}
}

// Validate runs every rule.
func (v *CategoryValidator) Validate() {
	v.checkNameConstraints()
}

func (v *CategoryValidator) checkNameConstraints() {
	name := v.category.Name
	if strings.TrimSpace(name) == "" {
		v.handler.Append(Error{Message: "'name' should not be null"})
		return
	}

	length := utf8.RuneCountInString(strings.TrimSpace(name))
	if length < categoryNameMinLength || length > categoryNameMaxLength {
		v.handler.Append(Error{Message: fmt.Sprintf("'name' must be between %d and %d characters", categoryNameMinLength, categoryNameMaxLength)})
	}
}
