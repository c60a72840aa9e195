package project

import "strings"

// CRUD verbs seeded on a resource, with their HTTP methods.
var crudMethods = []struct {
	Verb   string
	Method string
	ByKey  bool
}{
	{"create", "post", false},
	{"read", "get", true},
	{"update", "put", true},
	{"delete", "delete", true},
	{"list", "get", false},
}

// CRUDFunctionName names the function implementing verb on resource, e.g.
// ("read", "Order") -> "readOrder". Function names are unique project wide,
// so the resource is part of the name.
func CRUDFunctionName(verb, resource string) string {
	return verb + TypeName(resource)
}

// CRUDVerb returns the CRUD verb implemented by function on resource, or ""
// for functions that were not seeded as CRUD handlers.
func CRUDVerb(function, resource string) string {
	for _, c := range crudMethods {
		if function == CRUDFunctionName(c.Verb, resource) {
			return c.Verb
		}
	}
	return ""
}

// CRUDFunctions returns the five CRUD functions of r. Paths address the
// pluralized collection; single item routes carry the key as path
// parameters.
func CRUDFunctions(r Resource) []Function {
	collection := Plural(r.Name)
	item := collection + "/{" + FieldTag(valueOrDefault(r.Key.Hash, DefaultHashKey)) + "}"
	if r.Key.Range != "" {
		item += "/{" + FieldTag(r.Key.Range) + "}"
	}

	fns := make([]Function, 0, len(crudMethods))
	for _, c := range crudMethods {
		p := collection
		if c.ByKey {
			p = item
		}
		fns = append(fns, NewFunction(CRUDFunctionName(c.Verb, r.Name), r.Name, p, c.Method))
	}
	return fns
}

// DefaultPath is the route of a function added without an explicit path.
func DefaultPath(o Owner, function string) string {
	if o.Kind == KindResource {
		return Plural(o.Name)
	}
	return Plural(o.Name) + "/" + strings.ToLower(function)
}

func valueOrDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
