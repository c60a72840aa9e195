package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleModel(root string) *Model {
	m := New("shop", root)
	m.ImportPath = "github.com/acme/shop"

	r := NewResource("order")
	r.Attributes = []Attribute{{Name: "customer", GoType: "string"}, {Name: "total", GoType: "float64"}}
	r.Functions = CRUDFunctions(r)
	r.Auth = &AuthBinding{Type: DefaultAuthType, UserPoolARN: "arn:aws:cognito-idp:eu-central-1:1:userpool/x", Exclude: []string{"listOrder"}}
	m.Resources = append(m.Resources, r)

	m.FunctionGroups = append(m.FunctionGroups, FunctionGroup{
		Name:      "default",
		Functions: []Function{NewFunction("health", "default", "defaults/health", "")},
	})
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	m := sampleModel(root)

	if err := Save(m, root); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Root != filepath.Clean(root) {
		t.Errorf("Root = %q, want %q", got.Root, root)
	}
	if got.Name != "shop" || got.ImportPath != "github.com/acme/shop" {
		t.Errorf("project = %q/%q", got.Name, got.ImportPath)
	}
	if len(got.Resources) != 1 || len(got.Resources[0].Functions) != 5 {
		t.Fatalf("resources = %+v", got.Resources)
	}
	if !got.Resources[0].Auth.Excludes("listOrder") {
		t.Error("auth exclude list lost")
	}
	fn, owner, ok := got.FindFunction("health")
	if !ok || owner.Kind != KindGroup || fn.Handler != "bin/default/health" {
		t.Errorf("FindFunction(health) = %+v, %+v, %v", fn, owner, ok)
	}

	// Saving the loaded model again yields identical bytes.
	first, _ := os.ReadFile(ModelPath(root))
	if err := Save(got, root); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(ModelPath(root))
	if string(first) != string(second) {
		t.Errorf("model not stable across save cycles:\n%s\n---\n%s", first, second)
	}
}

func TestUnknownFieldsPreserved(t *testing.T) {
	root := t.TempDir()
	content := `name: shop
importPath: shop
owner: platform-team
resources:
  - name: order
    key:
      hash: id
    billing:
      mode: ondemand
    tags:
      team: checkout
    functions:
      - name: listOrder
        assignedTo: order
        handler: bin/order/listOrder
        memorySize: 256
        event:
          path: orders
          method: get
`
	if err := os.WriteFile(ModelPath(root), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Extra["owner"] != "platform-team" {
		t.Errorf("model extra = %v", m.Extra)
	}
	if err := Save(m, root); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(ModelPath(root))
	for _, want := range []string{"owner: platform-team", "team: checkout", "memorySize: 256"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("saved model lost %q:\n%s", want, data)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    error
	}{
		{"missing", nil, ErrNotFound},
		{"not_yaml", ptr("name: [unclosed"), ErrCorruptModel},
		{"schema_violation", ptr("name: 1shop\n"), ErrCorruptModel},
		{"invalid_billing", ptr("name: shop\nresources:\n  - name: order\n    key: {hash: id}\n    billing: {mode: free}\n"), ErrCorruptModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.content != nil {
				if err := os.WriteFile(ModelPath(root), []byte(*tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			_, err := Load(root)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
			if KindOf(err) != tt.want {
				t.Errorf("KindOf = %v, want %v", KindOf(err), tt.want)
			}
		})
	}
}

func TestAtomicWriteReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")

	if err := AtomicWrite(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWrite(path, []byte("two"), 0o600); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "two" {
		t.Errorf("content = %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := sampleModel(t.TempDir())
	c := m.Clone()

	c.Resources[0].Functions[0].Event.Path = "changed"
	c.Resources[0].Auth.Exclude[0] = "changed"
	c.FunctionGroups[0].Name = "changed"

	if m.Resources[0].Functions[0].Event.Path == "changed" {
		t.Error("functions shared with clone")
	}
	if m.Resources[0].Auth.Exclude[0] == "changed" {
		t.Error("auth shared with clone")
	}
	if m.FunctionGroups[0].Name == "changed" {
		t.Error("groups shared with clone")
	}
}

func ptr(s string) *string { return &s }
