package descriptor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/project"
)

const (
	providerName      = "aws"
	defaultStage      = "${opt:stage, 'dev'}"
	stageRef          = "${opt:stage, self:provider.stage}"
	restAPIRef        = "ApiGatewayRestApi"
	cognitoAuthorizer = "COGNITO_USER_POOLS"
	userPoolSecretRef = "${file(secrets.yml):COGNITO_USER_POOL}"
	identitySource    = "method.request.header.Authorization"
)

// tableActions are granted on every resource table.
var tableActions = []string{
	"dynamodb:DescribeTable",
	"dynamodb:Query",
	"dynamodb:Scan",
	"dynamodb:GetItem",
	"dynamodb:PutItem",
	"dynamodb:UpdateItem",
	"dynamodb:DeleteItem",
}

// Synthesize derives the descriptor from m. It performs no I/O and depends
// only on m.
func Synthesize(m *project.Model) (*Descriptor, error) {
	d := &Descriptor{
		Service: m.Name,
		Provider: Provider{
			Name:    providerName,
			Runtime: valueOr(m.Runtime, project.DefaultRuntime),
			Region:  valueOr(m.Region, project.DefaultRegion),
			Stage:   defaultStage,
		},
		Package: Package{
			Exclude: []string{"./**"},
			Include: []string{defs.BinDir + "/**"},
		},
	}

	resources := map[string]*Resource{}
	var tableARNs []string

	for _, r := range m.Resources {
		table, err := tableFor(r)
		if err != nil {
			return nil, err
		}
		resources[TableResourceName(r.Name)] = table

		env := TableEnv(r.Name)
		if d.Provider.Environment == nil {
			d.Provider.Environment = map[string]string{}
		}
		d.Provider.Environment[env] = fmt.Sprintf("${self:service}-%s-%s", project.Plural(r.Name), stageRef)
		tableARNs = append(tableARNs, fmt.Sprintf("arn:aws:dynamodb:${aws:region}:*:table/${self:provider.environment.%s}", env))
	}

	if len(tableARNs) > 0 {
		slices.Sort(tableARNs)
		d.Provider.RoleStatements = []RoleStatement{{
			Effect:   "Allow",
			Action:   slices.Clone(tableActions),
			Resource: tableARNs,
		}}
	}

	for _, o := range m.Owners() {
		auth := *o.Auth
		if auth != nil {
			resources[AuthorizerResourceName(o.Name)] = authorizerFor(o.Name, auth)
		}
		for _, fn := range *o.Functions {
			if d.Functions == nil {
				d.Functions = map[string]*Function{}
			}
			d.Functions[project.QualifiedName(o.Name, fn.Name)] = functionFor(o.Name, fn, auth)
		}
	}

	if len(resources) > 0 {
		d.Resources = &Resources{Resources: resources}
	}
	return d, nil
}

// Render synthesizes and marshals the descriptor in one step.
func Render(m *project.Model) ([]byte, error) {
	d, err := Synthesize(m)
	if err != nil {
		return nil, err
	}
	return d.Marshal()
}

// TableResourceName is the CloudFormation logical id of a resource's table.
func TableResourceName(resource string) string {
	return project.TypeName(resource) + "DynamoDbTable"
}

// AuthorizerResourceName is the CloudFormation logical id of an owner's authorizer.
func AuthorizerResourceName(owner string) string {
	return project.TypeName(owner) + "Authorizer"
}

// TableEnv is the environment variable carrying a resource's table name.
func TableEnv(resource string) string {
	return project.EnvName(resource) + "_TABLE_NAME"
}

func functionFor(owner string, fn project.Function, auth *project.AuthBinding) *Function {
	ev := HTTPEvent{
		Path:   fn.Event.Path,
		Method: fn.Event.Method,
		CORS:   fn.Event.CORSEnabled(),
	}
	if auth != nil && !auth.Excludes(fn.Name) {
		ev.Authorizer = &Authorizer{
			Type:         cognitoAuthorizer,
			AuthorizerID: Reference{Ref: AuthorizerResourceName(owner)},
		}
	}
	return &Function{
		Handler: fn.Handler,
		Events:  []Event{{HTTP: ev}},
	}
}

func tableFor(r project.Resource) (*Resource, error) {
	props := Properties{
		TableName: fmt.Sprintf("${self:provider.environment.%s}", TableEnv(r.Name)),
	}

	hash := valueOr(r.Key.Hash, project.DefaultHashKey)
	props.KeySchema = append(props.KeySchema, KeySchemaElement{AttributeName: project.FieldTag(hash), KeyType: "HASH"})
	props.AttributeDefinitions = append(props.AttributeDefinitions, AttributeDefinition{
		AttributeName: project.FieldTag(hash),
		AttributeType: attributeType(r, hash),
	})
	if r.Key.Range != "" {
		props.KeySchema = append(props.KeySchema, KeySchemaElement{AttributeName: project.FieldTag(r.Key.Range), KeyType: "RANGE"})
		props.AttributeDefinitions = append(props.AttributeDefinitions, AttributeDefinition{
			AttributeName: project.FieldTag(r.Key.Range),
			AttributeType: attributeType(r, r.Key.Range),
		})
	}

	switch r.Billing.Mode {
	case project.BillingOnDemand:
		props.BillingMode = "PAY_PER_REQUEST"
	case project.BillingProvisioned, "":
		props.ProvisionedThroughput = &ProvisionedThroughput{
			ReadCapacityUnits:  max(r.Billing.Read, 1),
			WriteCapacityUnits: max(r.Billing.Write, 1),
		}
	default:
		return nil, fmt.Errorf("resource %q: unknown billing mode %q", r.Name, r.Billing.Mode)
	}

	return &Resource{
		Type:           "AWS::DynamoDB::Table",
		DeletionPolicy: "Retain",
		Properties:     props,
	}, nil
}

func authorizerFor(owner string, auth *project.AuthBinding) *Resource {
	arn := auth.UserPoolARN
	if arn == "" {
		arn = userPoolSecretRef
	}
	return &Resource{
		Type:      "AWS::ApiGateway::Authorizer",
		DependsOn: []string{restAPIRef},
		Properties: Properties{
			Name:           strings.ToLower(owner) + "-authorizer",
			IdentitySource: identitySource,
			RestAPIID:      &Reference{Ref: restAPIRef},
			AuthType:       cognitoAuthorizer,
			ProviderARNs:   []string{arn},
		},
	}
}

// attributeType returns the DynamoDB scalar type of a key attribute.
func attributeType(r project.Resource, name string) string {
	for _, a := range r.Attributes {
		if a.Name == name {
			return dynamoType(a.GoType)
		}
	}
	return "S"
}

// dynamoType maps a Go type onto a DynamoDB key attribute type.
func dynamoType(goType string) string {
	switch goType {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64":
		return "N"
	case "[]byte":
		return "B"
	default:
		return "S"
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
