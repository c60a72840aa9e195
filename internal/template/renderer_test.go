package template

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestRendererRender(t *testing.T) {
	t.Run("successful_render", func(t *testing.T) {
		fs := fstest.MapFS{
			"Makefile.tmpl": &fstest.MapFile{
				Data: []byte("# {{.Name}}\n\nVersion: {{.Version}}\n"),
			},
		}
		r := NewRenderer(fs)

		data := map[string]string{
			"Name":    "shop",
			"Version": "1.0.0",
		}

		result, err := r.Render("Makefile.tmpl", data)
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}

		expected := "# shop\n\nVersion: 1.0.0\n"
		if string(result) != expected {
			t.Errorf("Render result = %q, want %q", string(result), expected)
		}
	})

	t.Run("missing_key_strict_mode", func(t *testing.T) {
		fs := fstest.MapFS{
			"test.tmpl": &fstest.MapFile{
				Data: []byte("Hello {{.Name}}, your role is {{.Role}}"),
			},
		}
		r := NewRenderer(fs)

		_, err := r.Render("test.tmpl", map[string]string{"Name": "order"})
		if err == nil {
			t.Fatal("expected error for missing key")
		}
		if !errors.Is(err, ErrMissingTemplateKey) {
			t.Errorf("expected ErrMissingTemplateKey, got: %v", err)
		}
	})

	t.Run("nonexistent_template", func(t *testing.T) {
		r := NewRenderer(fstest.MapFS{})

		_, err := r.Render("nonexistent.tmpl", nil)
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("expected ErrTemplateNotFound, got: %v", err)
		}
	})

	t.Run("parse_error", func(t *testing.T) {
		fs := fstest.MapFS{
			"broken.tmpl": &fstest.MapFile{Data: []byte("{{if .X}")},
		}
		r := NewRenderer(fs)

		_, err := r.Render("broken.tmpl", map[string]bool{"X": true})
		if err == nil {
			t.Fatal("expected parse error")
		}
		if errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("parse error reported as not found: %v", err)
		}
	})
}

func TestUnexpandedTokenDetection(t *testing.T) {
	fs := fstest.MapFS{
		"leak.tmpl": &fstest.MapFile{
			Data: []byte(`{{"{{.Leftover}}"}}`),
		},
	}
	r := NewRenderer(fs)

	_, err := r.Render("leak.tmpl", nil)
	if !errors.Is(err, ErrUnexpandedToken) {
		t.Errorf("expected ErrUnexpandedToken, got: %v", err)
	}
}

func TestTemplateFuncs(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"type_name", `{{typeName "orderItem"}}`, "OrderItem"},
		{"env_name", `{{envName "orderItem"}}`, "ORDER_ITEM"},
		{"plural", `{{plural "order"}}`, "orders"},
		{"region_begin", `{{regionBegin "//" "route"}}`, "// mug:generated:begin route"},
		{"region_end", `{{regionEnd "#" "targets"}}`, "# mug:generated:end targets"},
		{"sprig_upper", `{{upper "post"}}`, "POST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(fstest.MapFS{
				"f.tmpl": &fstest.MapFile{Data: []byte(tt.tmpl)},
			})
			got, err := r.Render("f.tmpl", nil)
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultTemplatesRender(t *testing.T) {
	r := NewDefaultRenderer()

	res := &ResourceContext{
		Name:        "order",
		Package:     "order",
		HashKey:     "id",
		GeneratedID: true,
		Attributes:  []AttributeContext{{Name: "customer", GoType: "string"}},
	}
	fn := FunctionContext{
		Name:          "createOrder",
		Owner:         "order",
		QualifiedName: "order-createOrder",
		Handler:       "bin/order/createOrder",
		Path:          "orders",
		Method:        "post",
		ImportPath:    "github.com/acme/shop",
		Operation:     "create",
		Resource:      res,
	}
	group := FunctionContext{
		Name:          "health",
		Owner:         "default",
		QualifiedName: "default-health",
		Handler:       "bin/default/health",
		Path:          "defaults/health",
		Method:        "get",
		ImportPath:    "github.com/acme/shop",
	}
	proj := NewProjectContext("shop",
		WithImportPath("github.com/acme/shop"),
		WithProvider("eu-central-1", "go1.x"),
		WithFunctions([]FunctionContext{fn, group}),
	)

	tests := []struct {
		name     string
		template string
		data     any
		contains []string
	}{
		{"makefile", ProjectMakefile, proj, []string{"-o bin/order/createOrder ./functions/order/createOrder", "mug:generated:begin targets"}},
		{"go_mod", ProjectGoMod, proj, []string{"module github.com/acme/shop"}},
		{"gitignore", ProjectGitIgnore, proj, []string{"bin"}},
		{"group_handler", GroupHandler, group, []string{"// Function:   default-health", "GET /defaults/health", "mug:generated:end route"}},
		{"resource_handler", ResourceHandler, fn, []string{"PutItemWithContext", `order "github.com/acme/shop/functions/order"`}},
		{"resource_model", ResourceModel, res, []string{"package order", "Customer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.template, tt.data)
			if err != nil {
				t.Fatalf("Render(%s) error: %v", tt.template, err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(string(out), want) {
					t.Errorf("output of %s missing %q:\n%s", tt.template, want, out)
				}
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	if got := OutputName("project/Makefile.tmpl"); got != "project/Makefile" {
		t.Errorf("OutputName = %q", got)
	}
}
