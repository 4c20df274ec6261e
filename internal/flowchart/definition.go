// Package flowchart executes declarative workflow graphs over a recipe.
// A workflow is a set of typed nodes; decisions branch on named conditions
// and actions dispatch to named optimization strategies.
package flowchart

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// NodeType is the kind of a workflow node
type NodeType string

const (
	NodeTypeStart         NodeType = "start"
	NodeTypeEnd           NodeType = "end"
	NodeTypeDecision      NodeType = "decision"
	NodeTypeMultiDecision NodeType = "multi_decision"
	NodeTypeAction        NodeType = "action"
)

// Valid reports whether t is a known node type
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeStart, NodeTypeEnd, NodeTypeDecision, NodeTypeMultiDecision, NodeTypeAction:
		return true
	}
	return false
}

// NodeConfig is the declarative configuration of one node. Which fields
// apply depends on Type.
type NodeConfig struct {
	Type        NodeType `yaml:"type" json:"type"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`

	// start, action
	NextNode string `yaml:"next_node,omitempty" json:"next_node,omitempty"`

	// decision, multi_decision
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`

	// decision
	YesPath string `yaml:"yes_path,omitempty" json:"yes_path,omitempty"`
	NoPath  string `yaml:"no_path,omitempty" json:"no_path,omitempty"`

	// multi_decision
	Branches    map[string]string `yaml:"branches,omitempty" json:"branches,omitempty"`
	DefaultPath string            `yaml:"default_path,omitempty" json:"default_path,omitempty"`

	// action
	Strategy   string         `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Definition is a parsed workflow file. It is immutable once loaded and
// may be shared across concurrent runs.
type Definition struct {
	WorkflowName string                `yaml:"workflow_name" json:"workflow_name"`
	Version      string                `yaml:"version" json:"version"`
	Description  string                `yaml:"description,omitempty" json:"description,omitempty"`
	StartNode    string                `yaml:"start_node" json:"start_node"`
	Nodes        map[string]NodeConfig `yaml:"nodes" json:"nodes"`
}

// NodeIDs returns the node ids in sorted order
func (d *Definition) NodeIDs() []string {
	ids := make([]string, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Parse decodes a YAML or JSON workflow definition and checks the top-level
// shape. Every problem found is reported in one *ConfigError.
func Parse(data []byte) (*Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("malformed workflow file: %v", err)}}
	}
	if raw == nil {
		return nil, &ConfigError{Problems: []string{"workflow file is empty"}}
	}

	name, _ := raw["workflow_name"].(string)
	var problems []string
	if name == "" {
		problems = append(problems, "missing workflow_name")
	}
	start, _ := raw["start_node"].(string)
	if start == "" {
		problems = append(problems, "missing start_node")
	}

	nodesRaw, present := raw["nodes"]
	nodes, isMap := nodesRaw.(map[string]any)
	switch {
	case !present || nodesRaw == nil:
		problems = append(problems, "missing nodes")
	case !isMap:
		problems = append(problems, "nodes must be a mapping of node id to node config")
	default:
		if start != "" {
			if _, ok := nodes[start]; !ok {
				problems = append(problems, fmt.Sprintf("start_node %q is not a defined node", start))
			}
		}
		ids := make([]string, 0, len(nodes))
		for id := range nodes {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			cfg, ok := nodes[id].(map[string]any)
			if !ok {
				problems = append(problems, fmt.Sprintf("node %q must be a mapping", id))
				continue
			}
			if t, _ := cfg["type"].(string); t == "" {
				problems = append(problems, fmt.Sprintf("node %q is missing type", id))
			}
		}
	}
	if len(problems) > 0 {
		return nil, &ConfigError{Workflow: name, Problems: problems}
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &ConfigError{Workflow: name, Problems: []string{fmt.Sprintf("malformed workflow file: %v", err)}}
	}
	return &def, nil
}
