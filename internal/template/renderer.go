package template

import (
	"bytes"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"

	"github.com/crolly/mug/internal/project"
)

// templateFuncMap provides mug helpers on top of sprig's hermetic functions.
var templateFuncMap = template.FuncMap{
	// typeName converts a model name into an exported Go identifier.
	"typeName": project.TypeName,
	// envName converts a resource name into its environment variable prefix.
	"envName": project.EnvName,
	// fieldTag converts an attribute name into its JSON/DynamoDB key.
	"fieldTag": project.FieldTag,
	// plural returns the REST collection segment of a resource.
	"plural": project.Plural,
	// regionBegin and regionEnd emit generated-region markers behind a comment prefix.
	"regionBegin": func(prefix, id string) string {
		return fmt.Sprintf("%s %s %s", prefix, regionBeginToken, id)
	},
	"regionEnd": func(prefix, id string) string {
		return fmt.Sprintf("%s %s %s", prefix, regionEndToken, id)
	},
}

// unexpandedTokenPattern detects leftover template actions in rendered output.
var unexpandedTokenPattern = regexp.MustCompile(`\{\{\.?[A-Za-z_][A-Za-z0-9_.]*\}\}`)

// Renderer renders Go text/template files with strict mode enabled.
type Renderer interface {
	// Render parses the named template and executes it with data.
	// Returns ErrTemplateNotFound for unknown names, ErrMissingTemplateKey
	// if a key is missing and ErrUnexpandedToken if actions remain after rendering.
	Render(templateName string, data any) ([]byte, error)
}

// renderer is the concrete implementation of Renderer.
type renderer struct {
	fsys  fs.FS
	cache map[string]*template.Template
}

// NewRenderer creates a Renderer backed by the given filesystem.
func NewRenderer(fsys fs.FS) Renderer {
	return &renderer{fsys: fsys, cache: map[string]*template.Template{}}
}

// NewDefaultRenderer creates a Renderer over the embedded project templates.
func NewDefaultRenderer() Renderer {
	return NewRenderer(Templates())
}

// Render parses and executes a template with strict mode (missingkey=error).
func (r *renderer) Render(templateName string, data any) ([]byte, error) {
	tmpl, err := r.lookup(templateName)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingTemplateKey, templateName, err)
	}

	result := buf.Bytes()
	if loc := unexpandedTokenPattern.Find(result); loc != nil {
		return nil, fmt.Errorf("%w: found %q in %s", ErrUnexpandedToken, string(loc), templateName)
	}
	return result, nil
}

func (r *renderer) lookup(name string) (*template.Template, error) {
	if t, ok := r.cache[name]; ok {
		return t, nil
	}
	content, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	tmpl, err := template.New(name).
		Funcs(sprig.HermeticTxtFuncMap()).
		Funcs(templateFuncMap).
		Option("missingkey=error").
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("template parse %q: %w", name, err)
	}
	r.cache[name] = tmpl
	return tmpl, nil
}

// OutputName strips the .tmpl suffix from a template path.
func OutputName(templateName string) string {
	return strings.TrimSuffix(templateName, ".tmpl")
}
