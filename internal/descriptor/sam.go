package descriptor

import (
	"fmt"
	"path"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/project"
)

const (
	samFormatVersion = "2010-09-09"
	samTransform     = "AWS::Serverless-2016-10-31"
	samFunctionType  = "AWS::Serverless::Function"
	// samRuntime runs the debug binaries, which are plain executables.
	samRuntime = "go1.x"
	samTimeout = 30
)

// SAMTemplate is the template.yml read by `sam local start-api`. It serves
// the debug binaries built by `make debug` behind the same routes as the
// descriptor.
type SAMTemplate struct {
	FormatVersion string                  `yaml:"AWSTemplateFormatVersion"`
	Transform     string                  `yaml:"Transform"`
	Globals       SAMGlobals              `yaml:"Globals"`
	Resources     map[string]*SAMFunction `yaml:"Resources,omitempty"`
}

// SAMGlobals holds settings shared by every function.
type SAMGlobals struct {
	Function SAMFunctionGlobals `yaml:"Function"`
}

// SAMFunctionGlobals are the function defaults of the template.
type SAMFunctionGlobals struct {
	Runtime     string          `yaml:"Runtime"`
	Timeout     int             `yaml:"Timeout"`
	Environment *SAMEnvironment `yaml:"Environment,omitempty"`
}

// SAMEnvironment sets environment variables.
type SAMEnvironment struct {
	Variables map[string]string `yaml:"Variables"`
}

// SAMFunction is one serverless function resource.
type SAMFunction struct {
	Type       string                `yaml:"Type"`
	Properties SAMFunctionProperties `yaml:"Properties"`
}

// SAMFunctionProperties points at a debug binary and its API route.
type SAMFunctionProperties struct {
	Handler string              `yaml:"Handler"`
	CodeURI string              `yaml:"CodeUri"`
	Events  map[string]SAMEvent `yaml:"Events"`
}

// SAMEvent is an API trigger.
type SAMEvent struct {
	Type       string        `yaml:"Type"`
	Properties SAMEventRoute `yaml:"Properties"`
}

// SAMEventRoute is the route of an API trigger.
type SAMEventRoute struct {
	Path   string `yaml:"Path"`
	Method string `yaml:"Method"`
}

// SynthesizeSAM derives the local debugging template from m. Like
// Synthesize it performs no I/O. Tables are addressed through the same
// environment variables, suffixed "-debug" so local runs never share a
// deployed table name.
func SynthesizeSAM(m *project.Model) *SAMTemplate {
	t := &SAMTemplate{
		FormatVersion: samFormatVersion,
		Transform:     samTransform,
		Globals: SAMGlobals{Function: SAMFunctionGlobals{
			Runtime: samRuntime,
			Timeout: samTimeout,
		}},
	}

	if len(m.Resources) > 0 {
		vars := map[string]string{}
		for _, r := range m.Resources {
			vars[TableEnv(r.Name)] = fmt.Sprintf("%s-%s-debug", m.Name, project.Plural(r.Name))
		}
		t.Globals.Function.Environment = &SAMEnvironment{Variables: vars}
	}

	for _, o := range m.Owners() {
		for _, fn := range *o.Functions {
			if t.Resources == nil {
				t.Resources = map[string]*SAMFunction{}
			}
			t.Resources[SAMFunctionName(fn.Name)] = &SAMFunction{
				Type: samFunctionType,
				Properties: SAMFunctionProperties{
					Handler: fn.Name,
					CodeURI: path.Join(defs.DebugDir, o.Name),
					Events: map[string]SAMEvent{
						"Api": {Type: "Api", Properties: SAMEventRoute{
							Path:   "/" + fn.Event.Path,
							Method: fn.Event.Method,
						}},
					},
				},
			}
		}
	}
	return t
}

// RenderSAM synthesizes and marshals the debugging template.
func RenderSAM(m *project.Model) ([]byte, error) {
	return marshal("sam template", SynthesizeSAM(m))
}

// SAMFunctionName is the logical id of a function in the template.
func SAMFunctionName(function string) string {
	return project.TypeName(function) + "Function"
}
