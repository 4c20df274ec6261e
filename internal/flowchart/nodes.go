package flowchart

import (
	"context"
	"fmt"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/optimizer"
)

// NodeResult is what a node hands back to the engine. An empty NextNodeID
// terminates the run.
type NodeResult struct {
	NextNodeID    string
	Data          map[string]any
	Changes       []models.ChangeRecord
	StopExecution bool
}

// Node is one executable workflow step. Nodes hold only their immutable
// configuration and are safe to share across runs.
type Node interface {
	ID() string
	Type() NodeType
	Execute(ctx context.Context, rc *optimizer.RecipeContext) (NodeResult, error)
}

type baseNode struct {
	id  string
	cfg NodeConfig
}

func (n baseNode) ID() string     { return n.id }
func (n baseNode) Type() NodeType { return n.cfg.Type }

// StartNode is the entry point of a workflow
type StartNode struct{ baseNode }

func (n *StartNode) Execute(_ context.Context, _ *optimizer.RecipeContext) (NodeResult, error) {
	return NodeResult{
		NextNodeID: n.cfg.NextNode,
		Data:       map[string]any{"message": "Workflow started"},
	}, nil
}

// EndNode stops the run
type EndNode struct{ baseNode }

func (n *EndNode) Execute(_ context.Context, _ *optimizer.RecipeContext) (NodeResult, error) {
	return NodeResult{
		Data:          map[string]any{"message": "Workflow completed"},
		StopExecution: true,
	}, nil
}

// DecisionNode routes on a boolean condition
type DecisionNode struct{ baseNode }

func (n *DecisionNode) Execute(_ context.Context, rc *optimizer.RecipeContext) (NodeResult, error) {
	ok, err := rc.EvaluateCondition(n.cfg.Condition)
	if err != nil {
		return NodeResult{}, err
	}
	next := n.cfg.NoPath
	if ok {
		next = n.cfg.YesPath
	}
	data := map[string]any{
		"condition":        n.cfg.Condition,
		"condition_result": ok,
		"path_taken":       next,
	}
	if n.cfg.Description != "" {
		data["description"] = n.cfg.Description
	}
	return NodeResult{NextNodeID: next, Data: data}, nil
}

// MultiDecisionNode routes on the exact value of a condition
type MultiDecisionNode struct{ baseNode }

func (n *MultiDecisionNode) Execute(_ context.Context, rc *optimizer.RecipeContext) (NodeResult, error) {
	value, err := rc.ConditionValue(n.cfg.Condition)
	if err != nil {
		return NodeResult{}, err
	}
	next, matched := n.cfg.Branches[value]
	if !matched {
		next = n.cfg.DefaultPath
	}
	if next == "" {
		return NodeResult{}, fmt.Errorf("no branch for %s value %q and no default_path", n.cfg.Condition, value)
	}
	return NodeResult{
		NextNodeID: next,
		Data: map[string]any{
			"condition":       n.cfg.Condition,
			"condition_value": value,
			"matched_branch":  matched,
			"path_taken":      next,
		},
	}, nil
}

// ActionNode runs a strategy and always continues to its next node
type ActionNode struct{ baseNode }

func (n *ActionNode) Execute(ctx context.Context, rc *optimizer.RecipeContext) (NodeResult, error) {
	changes := rc.ExecuteStrategy(ctx, n.cfg.Strategy, optimizer.Parameters(n.cfg.Parameters))
	return NodeResult{
		NextNodeID: n.cfg.NextNode,
		Data: map[string]any{
			"strategy":      n.cfg.Strategy,
			"changes_count": len(changes),
		},
		Changes: changes,
	}, nil
}

// NewNode builds the node for a config. Unknown types fail.
func NewNode(id string, cfg NodeConfig) (Node, error) {
	b := baseNode{id: id, cfg: cfg}
	switch cfg.Type {
	case NodeTypeStart:
		return &StartNode{b}, nil
	case NodeTypeEnd:
		return &EndNode{b}, nil
	case NodeTypeDecision:
		return &DecisionNode{b}, nil
	case NodeTypeMultiDecision:
		return &MultiDecisionNode{b}, nil
	case NodeTypeAction:
		return &ActionNode{b}, nil
	}
	return nil, fmt.Errorf("node %q has unknown type %q", id, cfg.Type)
}
