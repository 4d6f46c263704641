package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// collectedField is a field of the response, its sub selections merged
// from every occurrence under the same response key.
type collectedField struct {
	*ast.Field
	Selections ast.SelectionSet
}

func (ec *executionContext) collectFields(typeName string, set ast.SelectionSet) []collectedField {
	return ec.collect(typeName, set, nil, map[string]bool{})
}

func (ec *executionContext) collect(typeName string, set ast.SelectionSet, out []collectedField, visited map[string]bool) []collectedField {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			if !ec.shouldInclude(sel.Directives) {
				continue
			}
			key := sel.Alias
			if key == "" {
				key = sel.Name
			}
			merged := false
			for i := range out {
				if out[i].Alias == key || (out[i].Alias == "" && out[i].Name == key) {
					out[i].Selections = append(out[i].Selections, sel.SelectionSet...)
					merged = true
					break
				}
			}
			if !merged {
				out = append(out, collectedField{Field: sel, Selections: append(ast.SelectionSet(nil), sel.SelectionSet...)})
			}
		case *ast.InlineFragment:
			if !ec.shouldInclude(sel.Directives) || !ec.applies(sel.TypeCondition, typeName) {
				continue
			}
			out = ec.collect(typeName, sel.SelectionSet, out, visited)
		case *ast.FragmentSpread:
			if !ec.shouldInclude(sel.Directives) || visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			fragment := sel.Definition
			if fragment == nil && ec.Doc != nil {
				fragment = ec.Doc.Fragments.ForName(sel.Name)
			}
			if fragment == nil || !ec.applies(fragment.TypeCondition, typeName) {
				continue
			}
			out = ec.collect(typeName, fragment.SelectionSet, out, visited)
		}
	}
	return out
}

func (ec *executionContext) applies(condition, typeName string) bool {
	if condition == "" || condition == typeName {
		return true
	}
	def := parsedSchema.Types[condition]
	if def == nil {
		return false
	}
	for _, possible := range parsedSchema.GetPossibleTypes(def) {
		if possible.Name == typeName {
			return true
		}
	}
	return false
}

func (ec *executionContext) shouldInclude(directives ast.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(ec.Variables)["if"].(bool); skip {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if include, _ := d.ArgumentMap(ec.Variables)["if"].(bool); !include {
			return false
		}
	}
	return true
}

// executeObject writes the selected fields of obj in selection order. It
// returns false when a non-null field came out null, which nulls obj.
func (ec *executionContext) executeObject(ctx context.Context, def *ast.Definition, set ast.SelectionSet, obj any, path ast.Path) (json.RawMessage, bool) {
	if !isResolvable(obj) {
		plain, err := toPlain(obj)
		if err != nil {
			ec.addError(path, err)
			return nil, false
		}
		obj = plain
	}
	buf := bytes.Buffer{}
	buf.WriteByte('{')
	for i, field := range ec.collectFields(def.Name, set) {
		if i > 0 {
			buf.WriteByte(',')
		}
		key := field.Alias
		if key == "" {
			key = field.Name
		}
		writeString(&buf, key)
		buf.WriteByte(':')
		if field.Name == "__typename" {
			writeString(&buf, def.Name)
			continue
		}
		value, ok := ec.executeField(ctx, field, obj, append(path[:len(path):len(path)], ast.PathName(key)))
		if !ok {
			return nil, false
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), true
}

func (ec *executionContext) executeField(ctx context.Context, field collectedField, obj any, path ast.Path) (ret json.RawMessage, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Ctx(ctx).Error().Msgf("%s: panic: %v", path, r)
			ec.addError(path, errors.New("internal system error"))
			ret, ok = null, !field.Definition.Type.NonNull
		}
	}()
	args := field.ArgumentMap(ec.Variables)
	var value any
	var err error
	switch o := obj.(type) {
	case queryRoot:
		value, err = ec.resolveQuery(ctx, field.Field, args)
	case mutationRoot:
		value, err = ec.resolveMutation(ctx, field.Field, args)
	case map[string]any:
		value = o[field.Name]
	default:
		value, err = ec.introspectField(o, field.Name, args)
	}
	if err != nil {
		ec.addError(path, err)
		return null, !field.Definition.Type.NonNull
	}
	return ec.completeValue(ctx, field.Definition.Type, field.Selections, value, path)
}

// completeValue serializes value as typ. It returns false when a non-null
// position ends up null, an error has been recorded then.
func (ec *executionContext) completeValue(ctx context.Context, typ *ast.Type, set ast.SelectionSet, value any, path ast.Path) (json.RawMessage, bool) {
	if isNil(value) {
		if typ.NonNull {
			ec.addError(path, gqlerror.ErrorPathf(path, "must not be null"))
			return nil, false
		}
		return null, true
	}
	nullable := func() (json.RawMessage, bool) {
		if typ.NonNull {
			return nil, false
		}
		return null, true
	}

	if typ.Elem != nil {
		rv := reflect.Indirect(reflect.ValueOf(value))
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			ec.addError(path, errors.Errorf("%T is not a list", value))
			return nullable()
		}
		buf := bytes.Buffer{}
		buf.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			item := rv.Index(i)
			var v any
			if item.Kind() == reflect.Struct && item.CanAddr() {
				v = item.Addr().Interface()
			} else {
				v = item.Interface()
			}
			raw, ok := ec.completeValue(ctx, typ.Elem, set, v, append(path[:len(path):len(path)], ast.PathIndex(i)))
			if !ok {
				return nullable()
			}
			buf.Write(raw)
		}
		buf.WriteByte(']')
		return buf.Bytes(), true
	}

	def := parsedSchema.Types[typ.NamedType]
	if def == nil {
		ec.addError(path, errors.Errorf("unknown type %s", typ.NamedType))
		return nullable()
	}
	switch def.Kind {
	case ast.Scalar, ast.Enum:
		raw, err := serializeLeaf(def, value)
		if err != nil {
			ec.addError(path, err)
			return nullable()
		}
		return raw, true
	case ast.Object:
		raw, ok := ec.executeObject(ctx, def, set, value, path)
		if !ok {
			return nullable()
		}
		return raw, true
	}
	ec.addError(path, errors.Errorf("cannot complete %s value %s", def.Kind, def.Name))
	return nullable()
}

func serializeLeaf(def *ast.Definition, value any) (json.RawMessage, error) {
	if n, ok := value.(json.Number); ok {
		switch def.Name {
		case "Int":
			i, err := n.Int64()
			if err != nil {
				return nil, errors.Errorf("%s is not an Int", n)
			}
			return strconv.AppendInt(nil, i, 10), nil
		case "Float":
			if f, err := n.Float64(); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, errors.Errorf("%s is not a Float", n)
			}
			return json.RawMessage(n.String()), nil
		}
	}
	if m, ok := value.(json.Marshaler); ok && def.Kind == ast.Scalar && !def.BuiltIn {
		return m.MarshalJSON()
	}
	rv := reflect.Indirect(reflect.ValueOf(value))
	switch def.Name {
	case "Int":
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.AppendInt(nil, rv.Int(), 10), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.AppendUint(nil, rv.Uint(), 10), nil
		case reflect.Float32, reflect.Float64:
			if f := rv.Float(); f == math.Trunc(f) && !math.IsInf(f, 0) {
				return strconv.AppendInt(nil, int64(f), 10), nil
			}
		}
		return nil, errors.Errorf("%v is not an Int", value)
	case "Float":
		var f float64
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		default:
			return nil, errors.Errorf("%v is not a Float", value)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.Errorf("%v is not a Float", f)
		}
		return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
	case "Boolean":
		if rv.Kind() != reflect.Bool {
			return nil, errors.Errorf("%v is not a Boolean", value)
		}
		return strconv.AppendBool(nil, rv.Bool()), nil
	case "String", "ID":
		if rv.Kind() != reflect.String {
			return nil, errors.Errorf("%v is not a %s", value, def.Name)
		}
		return json.Marshal(rv.String())
	}
	if def.Kind == ast.Enum {
		if rv.Kind() != reflect.String || def.EnumValues.ForName(rv.String()) == nil {
			return nil, errors.Errorf("%v is not a valid %s", value, def.Name)
		}
		return json.Marshal(rv.String())
	}
	return json.Marshal(value)
}

// isResolvable reports whether obj resolves its fields itself rather
// than being read as plain data.
func isResolvable(obj any) bool {
	switch obj.(type) {
	case queryRoot, mutationRoot, map[string]any:
		return true
	}
	return isIntrospection(obj)
}

// toPlain turns a resolver result into the map its JSON encoding decodes
// to, so json tags name the fields.
func toPlain(obj any) (map[string]any, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %T", obj)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out := map[string]any{}
	if err := dec.Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "decode %T", obj)
	}
	return out, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func writeString(buf *bytes.Buffer, s string) {
	data, _ := json.Marshal(s)
	buf.Write(data)
}
