package steps

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/configura/configura/pipeline"
	"github.com/configura/configura/runtime"
)

// ErrTypeMismatch is returned when an ordering comparison mixes types.
var ErrTypeMismatch = errors.New("type mismatch")

var operators = map[string]bool{"==": true, "!=": true, ">": true, "<": true, ">=": true, "<=": true}

type filterParams struct {
	KeyName         string `yaml:"key_name"`
	Operator        string `yaml:"operator"`
	Value           any    `yaml:"value"`
	FailOnTypeError bool   `yaml:"fail_on_type_error"`
}

// FilterByField keeps the records whose field at a dotted path compares
// true against a constant. Records where the path is missing or null are
// dropped.
type FilterByField struct {
	path            []string
	operator        string
	value           any
	failOnTypeError bool
}

// NewFilterByField creates a FilterByField step.
func NewFilterByField(keyName, operator string, value any, failOnTypeError bool) (*FilterByField, error) {
	if strings.TrimSpace(keyName) == "" {
		return nil, fmt.Errorf("key_name is required")
	}
	if !operators[operator] {
		return nil, fmt.Errorf("unsupported operator: %q", operator)
	}
	if value == nil {
		return nil, fmt.Errorf("value is required")
	}
	return &FilterByField{
		path:            strings.Split(keyName, "."),
		operator:        operator,
		value:           value,
		failOnTypeError: failOnTypeError,
	}, nil
}

func newFilterByField(_ *runtime.Context, p pipeline.Params) (pipeline.Step, error) {
	var fp filterParams
	if err := pipeline.DecodeParams(p, &fp); err != nil {
		return nil, err
	}
	return NewFilterByField(fp.KeyName, fp.Operator, fp.Value, fp.FailOnTypeError)
}

// Process returns the matching records in input order.
func (f *FilterByField) Process(_ context.Context, data pipeline.Batch) (pipeline.Batch, error) {
	out := pipeline.Batch{}
	for _, rec := range data {
		field, ok := rec.Lookup(f.path)
		if !ok || field == nil {
			continue
		}
		match, err := compare(f.operator, field, f.value)
		if err != nil {
			if f.failOnTypeError {
				return nil, fmt.Errorf("filter %s: %w", strings.Join(f.path, "."), err)
			}
			continue
		}
		if match {
			out = append(out, rec)
		}
	}
	return out, nil
}

func compare(op string, a, b any) (bool, error) {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)

	switch op {
	case "==", "!=":
		var eq bool
		if aNum && bNum {
			eq = af == bf
		} else {
			eq = reflect.DeepEqual(a, b)
		}
		return eq == (op == "=="), nil
	}

	var c int
	switch {
	case aNum && bNum:
		c = cmpFloat(af, bf)
	default:
		as, aStr := a.(string)
		bs, bStr := b.(string)
		if !aStr || !bStr {
			return false, fmt.Errorf("%w: '%s' not supported between %s and %s", ErrTypeMismatch, op, typeName(a), typeName(b))
		}
		c = strings.Compare(as, bs)
	}

	switch op {
	case ">":
		return c > 0, nil
	case "<":
		return c < 0, nil
	case ">=":
		return c >= 0, nil
	default:
		return c <= 0, nil
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case map[string]any, pipeline.Record:
		return "mapping"
	case []any:
		return "sequence"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
