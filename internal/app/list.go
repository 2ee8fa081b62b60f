package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// taskNode is one entry of the JSON task listing.
type taskNode struct {
	Label       string     `json:"label"`
	Type        string     `json:"type"`
	Mode        string     `json:"mode,omitempty"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source,omitempty"`
	Nodes       []taskNode `json:"nodes"`
}

// ListTasks writes the registered tasks to w in the configured list mode.
func (a *App) ListTasks(w io.Writer) error {
	a.logger.Debug("Listing tasks.", "tasks", a.registry.Len())
	switch a.config.ListMode {
	case ListSimple:
		for _, name := range a.registry.Names() {
			if _, err := fmt.Fprintln(w, name); err != nil {
				return err
			}
		}
		return nil
	case ListJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a.taskTree())
	default:
		return a.writeTree(w)
	}
}

func (a *App) taskTree() taskNode {
	root := taskNode{Label: "Tasks", Type: "root", Nodes: []taskNode{}}
	for _, name := range a.registry.Names() {
		root.Nodes = append(root.Nodes, a.taskNode(name, true))
	}
	return root
}

func (a *App) taskNode(name string, top bool) taskNode {
	t, ok := a.registry.Get(name)
	if !ok {
		return taskNode{Label: name, Type: "missing", Nodes: []taskNode{}}
	}
	n := taskNode{Label: t.Name, Type: "task", Mode: t.Mode.String(), Nodes: []taskNode{}}
	if top {
		n.Description = t.Description
		n.Source = t.Source
	}
	for _, child := range t.Children {
		n.Nodes = append(n.Nodes, a.taskNode(child, false))
	}
	return n
}

func (a *App) writeTree(w io.Writer) error {
	nameStyle := color.New(color.FgCyan)
	modeStyle := color.New(color.FgMagenta)
	if a.config.Color {
		nameStyle.EnableColor()
		modeStyle.EnableColor()
	} else {
		nameStyle.DisableColor()
		modeStyle.DisableColor()
	}

	var b strings.Builder
	var walk func(n taskNode, prefix string, last bool)
	walk = func(n taskNode, prefix string, last bool) {
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		b.WriteString(prefix + branch + nameStyle.Sprint(n.Label))
		if len(n.Nodes) > 0 {
			b.WriteString(" " + modeStyle.Sprint("<"+n.Mode+">"))
		}
		if n.Description != "" {
			b.WriteString("  " + n.Description)
		}
		b.WriteString("\n")
		for i, child := range n.Nodes {
			walk(child, prefix+indent, i == len(n.Nodes)-1)
		}
	}

	tree := a.taskTree()
	b.WriteString(tree.Label + "\n")
	for i, n := range tree.Nodes {
		walk(n, "", i == len(tree.Nodes)-1)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
