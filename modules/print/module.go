package print

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/internal/task"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// NewPrintTask is the "print" action. Strings print as one line, lists and
// tuples print one element per line, and maps and objects print sorted
// `key = "value"` lines.
func NewPrintTask(value cty.Value) (task.Func, error) {
	lines, err := render(value)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, out io.Writer) error {
		for _, line := range lines {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

func render(v cty.Value) ([]string, error) {
	if v.IsNull() {
		return []string{"(null)"}, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}

	ty := v.Type()
	switch {
	case ty.IsObjectType() || ty.IsMapType():
		values := v.AsValueMap()
		// Sort keys for consistent output
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			s, err := asString(values[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			lines = append(lines, fmt.Sprintf("%s = %q", k, s))
		}
		return lines, nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var lines []string
		for i, elem := range v.AsValueSlice() {
			s, err := asString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			lines = append(lines, s)
		}
		return lines, nil

	default:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

func asString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "(null)", nil
	}
	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot print %s value", v.Type().FriendlyName())
	}
	return sv.AsString(), nil
}

// Register registers the action with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAction("print", NewPrintTask)
}
