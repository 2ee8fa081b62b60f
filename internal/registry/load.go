package registry

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/taskrun/internal/ctxlog"
	"github.com/specialistvlad/taskrun/internal/fsutil"
	"github.com/specialistvlad/taskrun/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// hclTaskfile represents the top-level structure of a taskfile for decoding.
type hclTaskfile struct {
	Tasks []*hclTask `hcl:"task,block"`
}

// hclTask represents a single `task "name" { ... }` block. Attributes not
// listed here are treated as action invocations.
type hclTask struct {
	Name        string    `hcl:"name,label"`
	Description string    `hcl:"description,optional"`
	Parallel    []string  `hcl:"parallel,optional"`
	Series      []string  `hcl:"series,optional"`
	Remain      hcl.Body  `hcl:",remain"`
	DefRange    hcl.Range `hcl:",def_range"`
}

// LoadTaskfiles finds every .hcl file under path (or path itself when it is a
// file) and registers the tasks declared in them.
func (r *Registry) LoadTaskfiles(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading taskfiles...", "path", path)

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return fmt.Errorf("failed to find taskfiles in %s: %w", path, err)
	}

	if len(filePaths) == 0 {
		logger.Warn("No .hcl taskfiles found in path", "path", path)
		return nil
	}

	parser := hclparse.NewParser()
	evalCtx := newEvalContext()
	loaded := 0

	for _, filePath := range filePaths {
		tasks, err := r.parseTaskfile(parser, evalCtx, filePath)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if err := r.Add(t); err != nil {
				return fmt.Errorf("failed to register task from %s: %w", filePath, err)
			}
		}
		loaded += len(tasks)
		logger.Debug("Successfully loaded tasks from taskfile", "file", filePath, "tasks", len(tasks))
	}

	logger.Info("Taskfiles loaded successfully.", "files", len(filePaths), "tasks_loaded", loaded)
	return nil
}

// parseTaskfile decodes one HCL file into tasks without registering them.
func (r *Registry) parseTaskfile(parser *hclparse.Parser, evalCtx *hcl.EvalContext, filePath string) ([]*task.Task, error) {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	var parsed hclTaskfile
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}

	tasks := make([]*task.Task, 0, len(parsed.Tasks))
	for _, block := range parsed.Tasks {
		t, taskDiags := r.newTaskFromHCL(block, evalCtx, filePath)
		if taskDiags.HasErrors() {
			return nil, fmt.Errorf("error parsing task in file %s: %w", filePath, taskDiags)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// newTaskFromHCL turns a decoded block into a task. Exactly one of an action
// attribute, `parallel` or `series` must be set.
func (r *Registry) newTaskFromHCL(block *hclTask, evalCtx *hcl.EvalContext, filePath string) (*task.Task, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	attrs, attrDiags := block.Remain.JustAttributes()
	diags = append(diags, attrDiags...)
	if attrDiags.HasErrors() {
		return nil, diags
	}

	actionNames := make([]string, 0, len(attrs))
	for name := range attrs {
		actionNames = append(actionNames, name)
	}
	sort.Strings(actionNames)

	kinds := len(actionNames)
	if len(block.Parallel) > 0 {
		kinds++
	}
	if len(block.Series) > 0 {
		kinds++
	}
	if kinds != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid task definition",
			Detail:   fmt.Sprintf("Task %q must set exactly one of an action (%s), \"parallel\" or \"series\".", block.Name, strings.Join(r.ActionNames(), ", ")),
			Subject:  block.DefRange.Ptr(),
		})
		return nil, diags
	}

	t := &task.Task{
		Name:        block.Name,
		Description: block.Description,
		Source:      filePath,
	}

	switch {
	case len(block.Parallel) > 0:
		t.Mode = task.Parallel
		t.Children = block.Parallel
	case len(block.Series) > 0:
		t.Mode = task.Series
		t.Children = block.Series
	default:
		attr := attrs[actionNames[0]]
		action, ok := r.Action(attr.Name)
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported action",
				Detail:   fmt.Sprintf("No action named %q is registered. Known actions: %s.", attr.Name, strings.Join(r.ActionNames(), ", ")),
				Subject:  attr.NameRange.Ptr(),
			})
			return nil, diags
		}

		value, valueDiags := attr.Expr.Value(evalCtx)
		diags = append(diags, valueDiags...)
		if valueDiags.HasErrors() {
			return nil, diags
		}

		fn, err := action(value)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid action argument",
				Detail:   fmt.Sprintf("Action %q rejected its argument: %s.", attr.Name, err),
				Subject:  attr.Expr.Range().Ptr(),
			})
			return nil, diags
		}
		t.Mode = task.Single
		t.Fn = fn
	}

	return t, diags
}

// newEvalContext exposes the process environment to taskfiles as `env.NAME`.
func newEvalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, e := range os.Environ() {
		name, value, ok := strings.Cut(e, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = cty.StringVal(value)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}
