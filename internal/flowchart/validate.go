package flowchart

import (
	"fmt"
	"sort"

	"github.com/ak/brewlab/internal/optimizer"
)

// ValidationResult is the outcome of a structural workflow check
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks a definition without executing it. Every dangling
// reference, unknown type and unknown condition is reported; unknown
// strategies are warnings because dispatch treats them as no-ops.
func Validate(def *Definition) ValidationResult {
	v := &validator{def: def}
	v.run()
	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	def      *Definition
	errors   []string
	warnings []string
}

func (v *validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) exists(id string) bool {
	_, ok := v.def.Nodes[id]
	return ok
}

// ref reports a required reference that is missing or dangling
func (v *validator) ref(nodeID, field, target string) {
	switch {
	case target == "":
		v.errorf("node %q: missing %s", nodeID, field)
	case !v.exists(target):
		v.errorf("node %q: %s references unknown node %q", nodeID, field, target)
	}
}

func (v *validator) run() {
	if v.def == nil {
		v.errorf("workflow definition is nil")
		return
	}
	if v.def.WorkflowName == "" {
		v.errorf("missing workflow_name")
	}
	if len(v.def.Nodes) == 0 {
		v.errorf("workflow has no nodes")
	}
	switch {
	case v.def.StartNode == "":
		v.errorf("missing start_node")
	case !v.exists(v.def.StartNode):
		v.errorf("start_node references unknown node %q", v.def.StartNode)
	}

	for _, id := range v.def.NodeIDs() {
		cfg := v.def.Nodes[id]
		switch cfg.Type {
		case NodeTypeStart:
			v.ref(id, "next_node", cfg.NextNode)
		case NodeTypeEnd:
		case NodeTypeDecision:
			v.condition(id, cfg.Condition, true)
			v.ref(id, "yes_path", cfg.YesPath)
			v.ref(id, "no_path", cfg.NoPath)
		case NodeTypeMultiDecision:
			v.condition(id, cfg.Condition, false)
			if len(cfg.Branches) == 0 {
				v.errorf("node %q: multi_decision has no branches", id)
			}
			for _, value := range sortedKeys(cfg.Branches) {
				v.ref(id, fmt.Sprintf("branch %q", value), cfg.Branches[value])
			}
			v.ref(id, "default_path", cfg.DefaultPath)
		case NodeTypeAction:
			switch {
			case cfg.Strategy == "":
				v.errorf("node %q: missing strategy", id)
			case !optimizer.IsKnownStrategy(cfg.Strategy):
				v.warnf("node %q: unknown strategy %q will make no changes", id, cfg.Strategy)
			}
			v.ref(id, "next_node", cfg.NextNode)
		case "":
			v.errorf("node %q: missing type", id)
		default:
			v.errorf("node %q: unknown type %q", id, cfg.Type)
		}
	}
}

func (v *validator) condition(id, name string, boolean bool) {
	switch {
	case name == "":
		v.errorf("node %q: missing condition", id)
	case !optimizer.IsKnownCondition(name):
		v.errorf("node %q: unknown condition %q", id, name)
	case boolean && !optimizer.IsBooleanCondition(name):
		v.errorf("node %q: condition %q is not boolean, use a multi_decision node", id, name)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
