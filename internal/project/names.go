package project

import (
	"regexp"
	"slices"
	"strings"

	"github.com/gobuffalo/flect"
	"github.com/iancoleman/strcase"
	"golang.org/x/text/unicode/norm"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Normalize brings a user supplied name into the form stored in the model.
// Names are compared exactly after NFC normalization; case is significant.
func Normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidName reports whether name can be used for a resource, group,
// function or attribute.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// CheckName returns an ErrValidation error for names that do not qualify.
func CheckName(op, name string) error {
	if name == "" {
		return Errorf(ErrValidation, op, name, "name is required")
	}
	if !ValidName(name) {
		return Errorf(ErrValidation, op, name, "name must start with a letter and contain only letters, digits and '_'")
	}
	return nil
}

// TypeName is the exported Go identifier for a resource or attribute.
func TypeName(name string) string {
	return strcase.ToCamel(name)
}

// EnvName is the environment variable prefix for a resource.
func EnvName(name string) string {
	return strcase.ToScreamingSnake(name)
}

// FieldTag is the JSON/DynamoDB attribute name of an attribute.
func FieldTag(name string) string {
	return strcase.ToSnake(name)
}

// Plural is the REST collection segment of a resource, e.g. "Order" -> "orders".
func Plural(name string) string {
	return strcase.ToKebab(flect.Pluralize(name))
}

// OwnerKeys lists the identifiers derived from an owner name: its Go type,
// environment prefix, table segment and directory on a case-insensitive
// file system. Two owners must not share any of them.
func OwnerKeys(name string) []string {
	return []string{
		"type:" + TypeName(name),
		"env:" + EnvName(name),
		"plural:" + Plural(name),
		"dir:" + strings.ToLower(name),
	}
}

// FunctionKeys lists the identifiers derived from a function name. Two
// functions must not share any of them.
func FunctionKeys(name string) []string {
	return []string{
		"type:" + TypeName(name),
		"dir:" + strings.ToLower(name),
	}
}

// clash returns the first name in taken sharing a key with name.
func clash(keys func(string) []string, name string, taken []string) (string, bool) {
	own := keys(name)
	for _, t := range taken {
		for _, k := range keys(t) {
			if slices.Contains(own, k) {
				return t, true
			}
		}
	}
	return "", false
}
