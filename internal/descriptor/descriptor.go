// Package descriptor derives the Serverless Framework deployment descriptor
// from a project model. The descriptor is a projection: it is never edited
// on its own and synthesizing an unchanged model always yields the same bytes.
package descriptor

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Descriptor is the serverless.yml document.
type Descriptor struct {
	Service   string               `yaml:"service"`
	Provider  Provider             `yaml:"provider"`
	Package   Package              `yaml:"package"`
	Functions map[string]*Function `yaml:"functions,omitempty"`
	Resources *Resources           `yaml:"resources,omitempty"`
}

// Provider configures the cloud provider section.
type Provider struct {
	Name           string            `yaml:"name"`
	Runtime        string            `yaml:"runtime"`
	Region         string            `yaml:"region"`
	Stage          string            `yaml:"stage"`
	Environment    map[string]string `yaml:"environment,omitempty"`
	RoleStatements []RoleStatement   `yaml:"iamRoleStatements,omitempty"`
}

// RoleStatement is one IAM policy statement of the function role.
type RoleStatement struct {
	Effect   string   `yaml:"Effect"`
	Action   []string `yaml:"Action"`
	Resource []string `yaml:"Resource"`
}

// Package controls what is uploaded.
type Package struct {
	Exclude []string `yaml:"exclude"`
	Include []string `yaml:"include"`
}

// Function is one function entry.
type Function struct {
	Handler string  `yaml:"handler"`
	Events  []Event `yaml:"events"`
}

// Event wraps the single trigger type mug generates.
type Event struct {
	HTTP HTTPEvent `yaml:"http"`
}

// HTTPEvent is an API Gateway trigger.
type HTTPEvent struct {
	Path       string      `yaml:"path"`
	Method     string      `yaml:"method"`
	CORS       bool        `yaml:"cors,omitempty"`
	Authorizer *Authorizer `yaml:"authorizer,omitempty"`
}

// Authorizer references a shared authorizer resource.
type Authorizer struct {
	Type         string    `yaml:"type"`
	AuthorizerID Reference `yaml:"authorizerId"`
}

// Resources holds raw CloudFormation resources.
type Resources struct {
	Resources map[string]*Resource `yaml:"Resources"`
}

// Resource is one CloudFormation resource.
type Resource struct {
	Type           string     `yaml:"Type"`
	DependsOn      []string   `yaml:"DependsOn,omitempty"`
	DeletionPolicy string     `yaml:"DeletionPolicy,omitempty"`
	Properties     Properties `yaml:"Properties"`
}

// Properties covers the properties of DynamoDB tables and API Gateway authorizers.
type Properties struct {
	TableName             string                 `yaml:"TableName,omitempty"`
	AttributeDefinitions  []AttributeDefinition  `yaml:"AttributeDefinitions,omitempty"`
	KeySchema             []KeySchemaElement     `yaml:"KeySchema,omitempty"`
	BillingMode           string                 `yaml:"BillingMode,omitempty"`
	ProvisionedThroughput *ProvisionedThroughput `yaml:"ProvisionedThroughput,omitempty"`

	Name           string     `yaml:"Name,omitempty"`
	IdentitySource string     `yaml:"IdentitySource,omitempty"`
	RestAPIID      *Reference `yaml:"RestApiId,omitempty"`
	AuthType       string     `yaml:"Type,omitempty"`
	ProviderARNs   []string   `yaml:"ProviderARNs,omitempty"`
}

// AttributeDefinition declares a key attribute type.
type AttributeDefinition struct {
	AttributeName string `yaml:"AttributeName"`
	AttributeType string `yaml:"AttributeType"`
}

// KeySchemaElement is one element of a table key.
type KeySchemaElement struct {
	AttributeName string `yaml:"AttributeName"`
	KeyType       string `yaml:"KeyType"`
}

// ProvisionedThroughput sets table capacity.
type ProvisionedThroughput struct {
	ReadCapacityUnits  int64 `yaml:"ReadCapacityUnits"`
	WriteCapacityUnits int64 `yaml:"WriteCapacityUnits"`
}

// Reference is a CloudFormation Ref.
type Reference struct {
	Ref string `yaml:"Ref"`
}

// Marshal renders the descriptor. Maps are emitted with sorted keys, so
// the output only depends on the descriptor's content.
func (d *Descriptor) Marshal() ([]byte, error) {
	return marshal("descriptor", d)
}

func marshal(what string, v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", what, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", what, err)
	}
	return buf.Bytes(), nil
}

// Parse decodes a descriptor previously produced by Marshal.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	return &d, nil
}
