package executor

import (
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/pkg/errors"
)

var errIntrospectionDisabled = errors.New("introspection disabled")

func (ec *executionContext) introspectSchema() (*introspection.Schema, error) {
	if ec.DisableIntrospection {
		return nil, errIntrospectionDisabled
	}
	return introspection.WrapSchema(parsedSchema), nil
}

func (ec *executionContext) introspectType(name string) (*introspection.Type, error) {
	if ec.DisableIntrospection {
		return nil, errIntrospectionDisabled
	}
	def := parsedSchema.Types[name]
	if def == nil {
		return nil, nil
	}
	return introspection.WrapTypeFromDef(parsedSchema, def), nil
}

func isIntrospection(obj any) bool {
	switch obj.(type) {
	case *introspection.Schema, *introspection.Type, *introspection.Field,
		*introspection.InputValue, *introspection.EnumValue, *introspection.Directive:
		return true
	}
	return false
}

func (ec *executionContext) introspectField(obj any, name string, args map[string]any) (any, error) {
	includeDeprecated, _ := args["includeDeprecated"].(bool)
	switch o := obj.(type) {
	case *introspection.Schema:
		switch name {
		case "description":
			return o.Description(), nil
		case "types":
			return o.Types(), nil
		case "queryType":
			return o.QueryType(), nil
		case "mutationType":
			return o.MutationType(), nil
		case "subscriptionType":
			return o.SubscriptionType(), nil
		case "directives":
			return o.Directives(), nil
		}
	case *introspection.Type:
		switch name {
		case "kind":
			return o.Kind(), nil
		case "name":
			return o.Name(), nil
		case "description":
			return o.Description(), nil
		case "fields":
			return o.Fields(includeDeprecated), nil
		case "interfaces":
			return o.Interfaces(), nil
		case "possibleTypes":
			return o.PossibleTypes(), nil
		case "enumValues":
			return o.EnumValues(includeDeprecated), nil
		case "inputFields":
			return o.InputFields(), nil
		case "ofType":
			return o.OfType(), nil
		case "specifiedByURL":
			return o.SpecifiedByURL(), nil
		}
	case *introspection.Field:
		switch name {
		case "name":
			return o.Name, nil
		case "description":
			return o.Description(), nil
		case "args":
			return o.Args, nil
		case "type":
			return o.Type, nil
		case "isDeprecated":
			return o.IsDeprecated(), nil
		case "deprecationReason":
			return o.DeprecationReason(), nil
		}
	case *introspection.InputValue:
		switch name {
		case "name":
			return o.Name, nil
		case "description":
			return o.Description(), nil
		case "type":
			return o.Type, nil
		case "defaultValue":
			return o.DefaultValue, nil
		}
	case *introspection.EnumValue:
		switch name {
		case "name":
			return o.Name, nil
		case "description":
			return o.Description(), nil
		case "isDeprecated":
			return o.IsDeprecated(), nil
		case "deprecationReason":
			return o.DeprecationReason(), nil
		}
	case *introspection.Directive:
		switch name {
		case "name":
			return o.Name, nil
		case "description":
			return o.Description(), nil
		case "locations":
			return o.Locations, nil
		case "args":
			return o.Args, nil
		case "isRepeatable":
			return o.IsRepeatable, nil
		}
	default:
		return nil, errors.Errorf("cannot resolve %s on %T", name, obj)
	}
	return nil, nil
}
