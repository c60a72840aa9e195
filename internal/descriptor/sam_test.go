package descriptor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crolly/mug/internal/project"
)

func TestSynthesizeSAM(t *testing.T) {
	m := ordersModel()
	tmpl := SynthesizeSAM(m)

	if tmpl.Transform != samTransform || tmpl.Globals.Function.Runtime != samRuntime {
		t.Errorf("header = %+v", tmpl)
	}
	if len(tmpl.Resources) != 6 {
		t.Fatalf("functions = %d, want 6", len(tmpl.Resources))
	}

	read := tmpl.Resources["ReadOrderFunction"]
	if read == nil {
		t.Fatal("ReadOrderFunction missing")
	}
	if read.Type != samFunctionType || read.Properties.Handler != "readOrder" || read.Properties.CodeURI != "debug/order" {
		t.Errorf("readOrder = %+v", read)
	}
	route := read.Properties.Events["Api"].Properties
	if route.Path != "/orders/{id}/{placed_at}" || route.Method != "get" {
		t.Errorf("route = %+v", route)
	}

	if h := tmpl.Resources["HealthFunction"]; h == nil || h.Properties.CodeURI != "debug/default" {
		t.Errorf("health = %+v", h)
	}

	env := tmpl.Globals.Function.Environment
	if env == nil || env.Variables[TableEnv("order")] != "shop-orders-debug" {
		t.Errorf("environment = %+v", env)
	}
}

func TestSynthesizeSAMFollowsDescriptorRoutes(t *testing.T) {
	m := ordersModel()
	d, err := Synthesize(m)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := SynthesizeSAM(m)
	for _, fn := range m.Functions() {
		ev := d.Functions[project.QualifiedName(fn.AssignedTo, fn.Name)].Events[0].HTTP
		route := tmpl.Resources[SAMFunctionName(fn.Name)].Properties.Events["Api"].Properties
		if route.Path != "/"+ev.Path || route.Method != ev.Method {
			t.Errorf("%s: template %s %s, descriptor %s %s", fn.Name, route.Method, route.Path, ev.Method, ev.Path)
		}
	}
}

func TestRenderSAM(t *testing.T) {
	first, err := RenderSAM(ordersModel())
	if err != nil {
		t.Fatal(err)
	}
	again, err := RenderSAM(ordersModel())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, again) {
		t.Error("RenderSAM not deterministic")
	}
	if !strings.Contains(string(first), "CodeUri: debug/order") {
		t.Errorf("template = %s", first)
	}

	empty, err := RenderSAM(project.New("empty", ""))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(empty), "Resources:") || strings.Contains(string(empty), "Environment:") {
		t.Errorf("empty template = %s", empty)
	}
}
