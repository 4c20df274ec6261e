package flowchart_test

import (
	"context"
	"testing"

	"github.com/ak/brewlab/internal/domain/models"
	"github.com/ak/brewlab/internal/flowchart"
	"github.com/ak/brewlab/internal/optimizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weakPale has an OG of 1.040 and a grain amount off brewing precision
func weakPale() *models.Recipe {
	return &models.Recipe{
		Name:          "Weak Pale",
		BatchSize:     5,
		BatchSizeUnit: "gal",
		Efficiency:    75,
		BoilTime:      60,
		Ingredients: []models.Ingredient{
			{Name: "Pale Malt (2 Row) US", Type: models.IngredientTypeGrain, Amount: 7, Unit: "lb",
				GrainType: models.GrainTypeBaseMalt, Potential: models.Float(37), Color: models.Float(2)},
			{Name: "Caramel/Crystal Malt 40L", Type: models.IngredientTypeGrain, Amount: 0.25, Unit: "lb",
				GrainType: models.GrainTypeCaramelCrystal, Potential: models.Float(34), Color: models.Float(40)},
			{Name: "Cascade", Type: models.IngredientTypeHop, Amount: 1.1, Unit: "oz",
				AlphaAcid: models.Float(5.5), Use: models.HopUseBoil, Time: models.Float(60)},
			{Name: "Safale US-05", Type: models.IngredientTypeYeast, Amount: 1, Unit: "pkg", Attenuation: models.Float(81)},
		},
	}
}

func ogOnly(lo, hi float64) *models.StyleGuidelines {
	return &models.StyleGuidelines{Ranges: map[string]models.Range{models.MetricOG: {Min: lo, Max: hi}}}
}

func mustParse(t *testing.T, doc string) *flowchart.Definition {
	t.Helper()
	def, err := flowchart.Parse([]byte(doc))
	require.NoError(t, err)
	return def
}

func mustEngine(t *testing.T, def *flowchart.Definition, opts ...flowchart.Option) *flowchart.Engine {
	t.Helper()
	e, err := flowchart.NewEngine(def, optimizer.Dependencies{}, opts...)
	require.NoError(t, err)
	return e
}

func nodeIDs(path []flowchart.Step) []string {
	ids := make([]string, len(path))
	for i, s := range path {
		ids[i] = s.NodeID
	}
	return ids
}

const normalizeWorkflow = `
workflow_name: normalize_only
version: "1.0"
start_node: start
nodes:
  start:
    type: start
    next_node: check
  check:
    type: decision
    condition: amounts_normalized
    yes_path: done
    no_path: normalize
  normalize:
    type: action
    strategy: normalize_amounts
    next_node: check
  done:
    type: end
`

func TestParse(t *testing.T) {
	def := mustParse(t, normalizeWorkflow)
	assert.Equal(t, "normalize_only", def.WorkflowName)
	assert.Equal(t, "start", def.StartNode)
	assert.Equal(t, []string{"check", "done", "normalize", "start"}, def.NodeIDs())
	assert.Equal(t, flowchart.NodeTypeDecision, def.Nodes["check"].Type)
}

func TestParseJSON(t *testing.T) {
	def, err := flowchart.Parse([]byte(`{"workflow_name":"j","version":"1","start_node":"s",
		"nodes":{"s":{"type":"start","next_node":"e"},"e":{"type":"end"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "e", def.Nodes["s"].NextNode)
}

func TestParseReportsEveryProblem(t *testing.T) {
	_, err := flowchart.Parse([]byte(`
version: "1.0"
nodes:
  a:
    next_node: b
  b: 42
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, flowchart.ErrInvalidWorkflow)

	var cfgErr *flowchart.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{
		"missing workflow_name",
		"missing start_node",
		`node "a" is missing type`,
		`node "b" must be a mapping`,
	}, cfgErr.Problems)
}

func TestParseStartNodeMustExist(t *testing.T) {
	_, err := flowchart.Parse([]byte(`
workflow_name: w
start_node: nowhere
nodes:
  a:
    type: end
`))
	assert.ErrorContains(t, err, `start_node "nowhere" is not a defined node`)
}

func TestParseMalformed(t *testing.T) {
	_, err := flowchart.Parse([]byte("workflow_name: [unclosed"))
	assert.ErrorIs(t, err, flowchart.ErrInvalidWorkflow)

	_, err = flowchart.Parse(nil)
	assert.ErrorContains(t, err, "empty")

	_, err = flowchart.Parse([]byte("workflow_name: w\nstart_node: a\nnodes: [a, b]\n"))
	assert.ErrorContains(t, err, "nodes must be a mapping")
}

func TestValidate(t *testing.T) {
	res := flowchart.Validate(mustParse(t, normalizeWorkflow))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateCountsEveryDanglingReference(t *testing.T) {
	def := mustParse(t, `
workflow_name: dangling
start_node: start
nodes:
  start:
    type: start
    next_node: ghost_one
  pick:
    type: multi_decision
    condition: og_status
    branches:
      low: ghost_two
      high: done
    default_path: ghost_three
  done:
    type: end
`)
	res := flowchart.Validate(def)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 3)
	for _, e := range res.Errors {
		assert.Contains(t, e, "references unknown node")
	}
}

func TestValidateConditionsAndStrategies(t *testing.T) {
	def := mustParse(t, `
workflow_name: checks
start_node: start
nodes:
  start:
    type: start
    next_node: unknown_cond
  unknown_cond:
    type: decision
    condition: is_delicious
    yes_path: value_cond
    no_path: value_cond
  value_cond:
    type: decision
    condition: srm_status
    yes_path: act
    no_path: act
  act:
    type: action
    strategy: add_more_hops
    next_node: weird
  weird:
    type: teleport
`)
	res := flowchart.Validate(def)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 3)
	assert.Contains(t, res.Errors[0], `unknown condition "is_delicious"`)
	assert.Contains(t, res.Errors[1], "is not boolean")
	assert.Contains(t, res.Errors[2], `unknown type "teleport"`)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `unknown strategy "add_more_hops"`)
}

func TestNewEngineRejectsUnknownNodeType(t *testing.T) {
	def := mustParse(t, `
workflow_name: bad
start_node: start
nodes:
  start:
    type: start
    next_node: x
  x:
    type: teleport
`)
	_, err := flowchart.NewEngine(def, optimizer.Dependencies{})
	assert.ErrorIs(t, err, flowchart.ErrInvalidWorkflow)
	assert.ErrorContains(t, err, "teleport")
}

func TestExecuteWorkflow(t *testing.T) {
	e := mustEngine(t, mustParse(t, normalizeWorkflow))
	recipe := weakPale()

	res := e.ExecuteWorkflow(context.Background(), recipe, nil)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "normalize_only", res.WorkflowName)
	assert.Equal(t, []string{"start", "check", "normalize", "check", "done"}, nodeIDs(res.ExecutionPath))
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "normalize_amounts", res.Changes[0].Strategy)
	require.NotNil(t, res.FinalRecipe)
	assert.Equal(t, 1.0, res.FinalRecipe.Ingredients[2].Amount)
	assert.Empty(t, res.ErrorKind)
	assert.False(t, res.RolledBack)

	decision := res.ExecutionPath[1]
	assert.Equal(t, flowchart.NodeTypeDecision, decision.NodeType)
	assert.Equal(t, false, decision.Data["condition_result"])
	assert.Equal(t, "normalize", decision.Data["path_taken"])
	assert.Equal(t, 1, res.ExecutionPath[2].Data["changes_count"])
}

func TestExecuteWorkflowLeavesCallerRecipeUntouched(t *testing.T) {
	e := mustEngine(t, mustParse(t, normalizeWorkflow))
	recipe := weakPale()
	original := recipe.Clone()

	res := e.ExecuteWorkflow(context.Background(), recipe, nil)
	require.True(t, res.Success)
	assert.Equal(t, original, *recipe)
	assert.NotEqual(t, recipe.Ingredients[2].Amount, res.FinalRecipe.Ingredients[2].Amount)
}

func TestExecuteWorkflowStepLimit(t *testing.T) {
	def := mustParse(t, `
workflow_name: spin
start_node: start
nodes:
  start:
    type: start
    next_node: loop
  loop:
    type: decision
    condition: has_yeast
    yes_path: loop
    no_path: done
  done:
    type: end
`)
	require.True(t, flowchart.Validate(def).Valid, "cycles are structurally valid")

	res := mustEngine(t, def, flowchart.WithMaxSteps(10)).ExecuteWorkflow(context.Background(), weakPale(), nil)
	assert.False(t, res.Success)
	assert.Equal(t, flowchart.ErrorKindStepLimit, res.ErrorKind)
	assert.Equal(t, flowchart.ErrStepLimitExceeded.Error(), res.Error)
	assert.Len(t, res.ExecutionPath, 10)
	assert.True(t, res.RolledBack)
}

func TestExecuteWorkflowDefaultStepLimit(t *testing.T) {
	def := mustParse(t, `
workflow_name: spin
start_node: loop
nodes:
  loop:
    type: action
    strategy: normalize_amounts
    next_node: loop
`)
	res := mustEngine(t, def).ExecuteWorkflow(context.Background(), weakPale(), nil)
	assert.Equal(t, flowchart.ErrorKindStepLimit, res.ErrorKind)
	assert.Len(t, res.ExecutionPath, flowchart.DefaultMaxSteps)
}

func TestExecuteWorkflowUnknownConditionRollsBack(t *testing.T) {
	def := mustParse(t, `
workflow_name: broken
start_node: start
nodes:
  start:
    type: start
    next_node: normalize
  normalize:
    type: action
    strategy: normalize_amounts
    next_node: ask
  ask:
    type: decision
    condition: is_delicious
    yes_path: done
    no_path: done
  done:
    type: end
`)
	recipe := weakPale()
	res := mustEngine(t, def).ExecuteWorkflow(context.Background(), recipe, nil)

	assert.False(t, res.Success)
	assert.Equal(t, flowchart.ErrorKindCondition, res.ErrorKind)
	assert.Contains(t, res.Error, "is_delicious")
	assert.True(t, res.RolledBack)
	assert.Nil(t, res.FinalRecipe)
	assert.Equal(t, res.InitialMetrics, res.FinalMetrics)
	assert.Len(t, res.Changes, 1, "attempted changes are still reported")
	assert.Equal(t, []string{"start", "normalize"}, nodeIDs(res.ExecutionPath))
	assert.Equal(t, 1.1, recipe.Ingredients[2].Amount)
}

func TestExecuteWorkflowUnknownStrategyIsNoop(t *testing.T) {
	def := mustParse(t, `
workflow_name: noop
start_node: start
nodes:
  start:
    type: start
    next_node: act
  act:
    type: action
    strategy: add_more_hops
    next_node: done
  done:
    type: end
`)
	res := mustEngine(t, def).ExecuteWorkflow(context.Background(), weakPale(), nil)
	assert.True(t, res.Success)
	assert.Empty(t, res.Changes)
	assert.Equal(t, 0, res.ExecutionPath[1].Data["changes_count"])
}

func TestExecuteWorkflowMultiDecisionDefault(t *testing.T) {
	def := mustParse(t, `
workflow_name: multi
start_node: pick
nodes:
  pick:
    type: multi_decision
    condition: og_status
    branches:
      high: high_end
    default_path: other_end
  high_end:
    type: end
  other_end:
    type: end
`)
	e := mustEngine(t, def)

	res := e.ExecuteWorkflow(context.Background(), weakPale(), ogOnly(1.045, 1.065))
	require.True(t, res.Success)
	assert.Equal(t, []string{"pick", "other_end"}, nodeIDs(res.ExecutionPath))
	assert.Equal(t, "low", res.ExecutionPath[0].Data["condition_value"])
	assert.Equal(t, false, res.ExecutionPath[0].Data["matched_branch"])

	res = e.ExecuteWorkflow(context.Background(), weakPale(), ogOnly(1.020, 1.030))
	assert.Equal(t, []string{"pick", "high_end"}, nodeIDs(res.ExecutionPath))
}

func TestExecuteWorkflowCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := mustEngine(t, mustParse(t, normalizeWorkflow)).ExecuteWorkflow(ctx, weakPale(), nil)
	assert.False(t, res.Success)
	assert.Equal(t, flowchart.ErrorKindCanceled, res.ErrorKind)
	assert.Empty(t, res.ExecutionPath)
}

func TestExecuteWorkflowNilRecipe(t *testing.T) {
	res := mustEngine(t, mustParse(t, normalizeWorkflow)).ExecuteWorkflow(context.Background(), nil, nil)
	assert.False(t, res.Success)
	assert.Equal(t, flowchart.ErrorKindInternal, res.ErrorKind)
}

func TestValidateRequiresMultiDecisionDefault(t *testing.T) {
	def := mustParse(t, `
workflow_name: no_default
start_node: pick
nodes:
  pick:
    type: multi_decision
    condition: og_status
    branches:
      high: done
  done:
    type: end
`)
	res := flowchart.Validate(def)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "missing default_path")

	// an engine built without validation still refuses to end the run early
	out := mustEngine(t, def).ExecuteWorkflow(context.Background(), weakPale(), ogOnly(1.045, 1.065))
	assert.False(t, out.Success)
	assert.Equal(t, flowchart.ErrorKindNode, out.ErrorKind)
	assert.Contains(t, out.Error, "no default_path")
	assert.Nil(t, out.FinalRecipe)
}

type panickingCalculator struct{}

func (panickingCalculator) Calculate(*models.Recipe) models.Metrics {
	panic("calculator exploded")
}

func TestExecuteWorkflowRecoversCalculatorPanic(t *testing.T) {
	e, err := flowchart.NewEngine(mustParse(t, normalizeWorkflow), optimizer.Dependencies{Calculator: panickingCalculator{}})
	require.NoError(t, err)

	var res *flowchart.Result
	require.NotPanics(t, func() {
		res = e.ExecuteWorkflow(context.Background(), weakPale(), nil)
	})
	assert.False(t, res.Success)
	assert.Equal(t, flowchart.ErrorKindInternal, res.ErrorKind)
	assert.True(t, res.RolledBack)
	assert.Nil(t, res.FinalRecipe)
	assert.Empty(t, res.Changes)
}
