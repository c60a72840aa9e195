package project

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Model)
		wantErr string
	}{
		{"valid", func(*Model) {}, ""},
		{"bad_project_name", func(m *Model) { m.Name = "my-shop" }, "ident"},
		{"duplicate_owner", func(m *Model) {
			m.FunctionGroups = append(m.FunctionGroups, FunctionGroup{Name: "order"})
		}, "name already used"},
		{"duplicate_function", func(m *Model) {
			m.FunctionGroups[0].Functions = append(m.FunctionGroups[0].Functions, NewFunction("readOrder", "default", "x", "get"))
		}, "function name already used"},
		{"owner_case_collision", func(m *Model) {
			m.FunctionGroups = append(m.FunctionGroups, FunctionGroup{Name: "Order"})
		}, "collide with \"order\""},
		{"owner_underscore_collision", func(m *Model) {
			m.Resources[0].Name = "my_order"
			for i := range m.Resources[0].Functions {
				m.Resources[0].Functions[i].AssignedTo = "my_order"
			}
			m.Resources = append(m.Resources, NewResource("myOrder"))
		}, "collide with \"my_order\""},
		{"function_case_collision", func(m *Model) {
			m.FunctionGroups[0].Functions = append(m.FunctionGroups[0].Functions, NewFunction("ReadOrder", "default", "x", "get"))
		}, "collide with function \"readOrder\""},
		{"assigned_to_mismatch", func(m *Model) {
			m.FunctionGroups[0].Functions[0].AssignedTo = "order"
		}, "does not match owner"},
		{"unknown_exclude", func(m *Model) {
			m.Resources[0].Auth.Exclude = []string{"nope"}
		}, "unknown function"},
		{"undeclared_range_key", func(m *Model) {
			m.Resources[0].Key.Range = "createdAt"
		}, "not defined"},
		{"bad_method", func(m *Model) {
			m.FunctionGroups[0].Functions[0].Event.Method = "fetch"
		}, "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleModel(t.TempDir())
			tt.mutate(m)

			err := m.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			var v Violations
			if !errors.As(err, &v) {
				t.Fatalf("error %T is not Violations", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"order", true},
		{"Order", true},
		{"order_item2", true},
		{"", false},
		{"2order", false},
		{"order-item", false},
		{"order item", false},
		{"_order", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			if got := ValidName(tt.in); got != tt.valid {
				t.Errorf("ValidName(%q) = %v, want %v", tt.in, got, tt.valid)
			}
			err := CheckName("test", tt.in)
			if (err == nil) != tt.valid {
				t.Errorf("CheckName(%q) = %v", tt.in, err)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("CheckName error kind = %v", err)
			}
		})
	}

	// Composed and decomposed forms of the same name compare equal.
	if Normalize("cafe\u0301") != "caf\u00e9" {
		t.Error("Normalize does not apply NFC")
	}
	if Normalize(" order ") != "order" {
		t.Error("Normalize does not trim")
	}
}

func TestCRUDFunctions(t *testing.T) {
	r := NewResource("order")
	r.Attributes = []Attribute{{Name: "placedAt", GoType: "time.Time"}}
	r.Key.Range = "placedAt"

	fns := CRUDFunctions(r)
	want := []struct {
		name, method, path string
	}{
		{"createOrder", "post", "orders"},
		{"readOrder", "get", "orders/{id}/{placed_at}"},
		{"updateOrder", "put", "orders/{id}/{placed_at}"},
		{"deleteOrder", "delete", "orders/{id}/{placed_at}"},
		{"listOrder", "get", "orders"},
	}
	if len(fns) != len(want) {
		t.Fatalf("got %d functions", len(fns))
	}
	for i, w := range want {
		f := fns[i]
		if f.Name != w.name || f.Event.Method != w.method || f.Event.Path != w.path {
			t.Errorf("fns[%d] = %s %s %s, want %s %s %s", i, f.Name, f.Event.Method, f.Event.Path, w.name, w.method, w.path)
		}
		if f.AssignedTo != "order" || f.Handler != "bin/order/"+w.name {
			t.Errorf("fns[%d] owner/handler = %s/%s", i, f.AssignedTo, f.Handler)
		}
	}

	if got := CRUDVerb("deleteOrder", "order"); got != "delete" {
		t.Errorf("CRUDVerb = %q", got)
	}
	if got := CRUDVerb("checkout", "order"); got != "" {
		t.Errorf("CRUDVerb(checkout) = %q", got)
	}
}

func TestDefaultPath(t *testing.T) {
	m := sampleModel(t.TempDir())
	order, _ := m.Owner("order")
	def, _ := m.Owner("default")

	if got := DefaultPath(order, "checkout"); got != "orders" {
		t.Errorf("resource path = %q", got)
	}
	if got := DefaultPath(def, "Health"); got != "defaults/health" {
		t.Errorf("group path = %q", got)
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Op: "add function", Subject: "health", Kind: ErrWrite, Err: cause}

	if got := err.Error(); got != `add function: write failed "health": disk full` {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrWrite) || !errors.Is(err, cause) {
		t.Error("errors.Is must match kind and cause")
	}
	wrapped := fmt.Errorf("outer: %w", &Error{Kind: ErrInconsistent, Err: err})
	if KindOf(wrapped) != ErrInconsistent {
		t.Errorf("KindOf = %v, want ErrInconsistent", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != nil {
		t.Error("plain errors carry no kind")
	}
}

func TestClash(t *testing.T) {
	m := sampleModel(t.TempDir())
	tests := []struct {
		name     string
		clash    func(string) (string, bool)
		existing string
		taken    bool
	}{
		{"order", m.OwnerClash, "order", true},
		{"Order", m.OwnerClash, "order", true},
		{"orders", m.OwnerClash, "order", true},
		{"ORDER", m.OwnerClash, "order", true},
		{"invoice", m.OwnerClash, "", false},
		{"Default", m.OwnerClash, "default", true},
		{"read_order", m.FunctionClash, "readOrder", true},
		{"HEALTH", m.FunctionClash, "health", true},
		{"stats", m.FunctionClash, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing, taken := tt.clash(tt.name)
			if taken != tt.taken || existing != tt.existing {
				t.Errorf("clash(%q) = %q, %v, want %q, %v", tt.name, existing, taken, tt.existing, tt.taken)
			}
		})
	}
}
