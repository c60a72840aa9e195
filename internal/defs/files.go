// Package defs holds the fixed names shared by every layer of mug: file
// names inside a project, directory layout and generated-region markers.
package defs

// Project files.
const (
	// ModelFile is the persisted project model at the project root.
	ModelFile = "mug.yaml"

	// DescriptorFile is the Serverless Framework descriptor, regenerated on every mutation.
	DescriptorFile = "serverless.yml"

	// SAMTemplateFile serves the debug binaries to `sam local`, regenerated
	// with the descriptor.
	SAMTemplateFile = "template.yml"

	// Makefile builds every handler binary.
	Makefile = "Makefile"

	// GoMod is the module file of the generated project.
	GoMod = "go.mod"

	// GitIgnore keeps build output out of version control.
	GitIgnore = ".gitignore"

	// HandlerFile is the handler source inside every function directory.
	HandlerFile = "main.go"

	// ResourceModelFile holds the item type of a resource.
	ResourceModelFile = "model.go"
)

// Project directories.
const (
	// FunctionsDir contains one directory per resource or function group.
	FunctionsDir = "functions"

	// BinDir receives compiled handlers.
	BinDir = "bin"

	// DebugDir receives handlers built without optimizations by `make debug`.
	DebugDir = "debug"
)

// DefaultGroup is the function group used when a function is added without
// an explicit owner.
const DefaultGroup = "default"

// Generated region markers. A marker line is a "//" or "#" comment whose
// text starts with the token followed by a region id.
const (
	RegionBegin = "mug:generated:begin"
	RegionEnd   = "mug:generated:end"
)

// Config locations for the tool itself (not the generated project).
const (
	// ConfigDirName is the per-user directory below $HOME.
	ConfigDirName = ".mug"

	// ConfigFile is the tool configuration inside ConfigDirName.
	ConfigFile = "config.yaml"
)
