package project

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	structs      *validator.Validate
)

// schema returns the shared struct validator with mug's custom tags.
func schema() *validator.Validate {
	validateOnce.Do(func() {
		structs = validator.New(validator.WithRequiredStructEnabled())
		_ = structs.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
			return ValidName(fl.Field().String())
		})
	})
	return structs
}

// Violation is a single schema or invariant violation.
type Violation struct {
	Field   string
	Message string
}

// Violations collects everything wrong with a model.
type Violations []Violation

// Error implements the error interface.
func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, x := range v {
		msgs[i] = fmt.Sprintf("%s: %s", x.Field, x.Message)
	}
	return fmt.Sprintf("%d violation(s): %s", len(v), strings.Join(msgs, "; "))
}

// Validate checks the schema (required fields, enums, name syntax) and the
// model invariants: unique names and functions that agree with their owner.
func (m *Model) Validate() error {
	var out Violations

	if err := schema().Struct(m); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			out = append(out, Violation{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed %q (value %v)", fe.Tag(), fe.Value()),
			})
		}
	}

	owners := map[string]OwnerKind{}
	functions := map[string]string{}
	ownerKeys := map[string]string{}
	functionKeys := map[string]string{}
	for _, o := range m.Owners() {
		if prev, dup := owners[o.Name]; dup {
			out = append(out, Violation{Field: string(o.Kind) + "." + o.Name, Message: fmt.Sprintf("name already used by a %s", prev)})
		} else if other, ok := collides(ownerKeys, OwnerKeys(o.Name), o.Name); ok {
			out = append(out, Violation{Field: string(o.Kind) + "." + o.Name, Message: fmt.Sprintf("derived identifiers collide with %q", other)})
		}
		owners[o.Name] = o.Kind

		for _, fn := range *o.Functions {
			field := o.Name + "." + fn.Name
			if prev, dup := functions[fn.Name]; dup {
				out = append(out, Violation{Field: field, Message: fmt.Sprintf("function name already used in %q", prev)})
			} else if other, ok := collides(functionKeys, FunctionKeys(fn.Name), fn.Name); ok {
				out = append(out, Violation{Field: field, Message: fmt.Sprintf("derived identifiers collide with function %q", other)})
			}
			functions[fn.Name] = o.Name
			if fn.AssignedTo != o.Name {
				out = append(out, Violation{Field: field, Message: fmt.Sprintf("assignedTo %q does not match owner", fn.AssignedTo)})
			}
		}

		if auth := *o.Auth; auth != nil {
			for _, ex := range auth.Exclude {
				if !hasFunction(*o.Functions, ex) {
					out = append(out, Violation{Field: o.Name + ".auth.exclude", Message: fmt.Sprintf("unknown function %q", ex)})
				}
			}
		}

		if r := o.Resource; r != nil {
			out = append(out, r.validateKey()...)
		}
	}

	if len(out) > 0 {
		return out
	}
	return nil
}

func (r *Resource) validateKey() Violations {
	var out Violations
	if r.Key.Hash != "" && r.Key.Hash != DefaultHashKey && !r.HasAttribute(r.Key.Hash) {
		out = append(out, Violation{Field: r.Name + ".key.hash", Message: fmt.Sprintf("attribute %q not defined", r.Key.Hash)})
	}
	if r.Key.Range != "" && !r.HasAttribute(r.Key.Range) {
		out = append(out, Violation{Field: r.Name + ".key.range", Message: fmt.Sprintf("attribute %q not defined", r.Key.Range)})
	}
	return out
}

// HasAttribute reports whether the resource declares attribute name.
func (r *Resource) HasAttribute(name string) bool {
	for _, a := range r.Attributes {
		if a.Name == name {
			return true
		}
	}
	return false
}

// collides records keys for name and returns another name already holding
// one of them.
func collides(seen map[string]string, keys []string, name string) (string, bool) {
	var other string
	for _, k := range keys {
		if prev, ok := seen[k]; ok && prev != name && other == "" {
			other = prev
		}
		seen[k] = name
	}
	return other, other != ""
}

func hasFunction(fns []Function, name string) bool {
	for _, f := range fns {
		if f.Name == name {
			return true
		}
	}
	return false
}
