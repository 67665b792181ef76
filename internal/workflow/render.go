package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// ErrEmptyStepContext means the input detail was rendered before the run
// had any context for the step.
var ErrEmptyStepContext = errors.New("the input tab must be rendered with a non-empty context")

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	enumeratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			MarginRight(1)
)

// RenderStepInputDetail renders the input of stepID as a tree, one root
// node per context item. A run without context or flow output renders
// nothing.
func RenderStepInputDetail(run *Run, stepID string) (string, error) {
	if run == nil || run.Context == nil || run.Output == nil || run.Output.Flow == nil {
		return "", nil
	}

	items := StepContext(run.Context, *run.Output.Flow, stepID)
	if len(items) == 0 {
		return "", fmt.Errorf("step %q: %w", stepID, ErrEmptyStepContext)
	}

	t := tree.New().
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumeratorStyle)
	for _, item := range items {
		t.Child(node(labelStyle.Render(item.Name), item.Context))
	}
	return t.String(), nil
}

// MustRenderStepInputDetail is RenderStepInputDetail for callers that treat
// an empty step context as a bug.
func MustRenderStepInputDetail(run *Run, stepID string) string {
	out, err := RenderStepInputDetail(run, stepID)
	if err != nil {
		panic(err)
	}
	return out
}

// node returns a leaf for scalars and empty composites, a subtree
// otherwise.
func node(label string, value any) any {
	switch v := value.(type) {
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, elem := range v {
			m[fmt.Sprint(k)] = elem
		}
		return node(label, m)
	case map[string]any:
		if len(v) == 0 {
			return label + ": " + valueStyle.Render("{}")
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sub := tree.Root(label)
		for _, k := range keys {
			sub.Child(node(keyStyle.Render(k), v[k]))
		}
		return sub
	case []any:
		if len(v) == 0 {
			return label + ": " + valueStyle.Render("[]")
		}
		sub := tree.Root(label)
		for i, elem := range v {
			sub.Child(node(keyStyle.Render(strconv.Itoa(i)), elem))
		}
		return sub
	default:
		return label + ": " + valueStyle.Render(scalar(v))
	}
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}
