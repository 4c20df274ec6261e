package models

// ChangeType identifies the shape of a change record
type ChangeType string

const (
	ChangeIngredientModified    ChangeType = "ingredient_modified"
	ChangeIngredientAdded       ChangeType = "ingredient_added"
	ChangeIngredientRemoved     ChangeType = "ingredient_removed"
	ChangeIngredientSubstituted ChangeType = "ingredient_substituted"
	ChangeBatchSizeConverted    ChangeType = "batch_size_converted"
	ChangeTemperatureConverted  ChangeType = "temperature_converted"
	ChangeIngredientConverted   ChangeType = "ingredient_converted"
	ChangeIngredientNormalized  ChangeType = "ingredient_normalized"
)

// Fields that an ingredient_modified record may target
const (
	FieldAmount    = "amount"
	FieldUnit      = "unit"
	FieldTime      = "time"
	FieldColor     = "color"
	FieldAlphaAcid = "alpha_acid"
	FieldUse       = "use"
)

// ChangeRecord is one entry of the append-only change log produced by strategies.
// Only the fields relevant to Type are populated.
type ChangeRecord struct {
	Type ChangeType `json:"type"`

	// ingredient_modified, ingredient_added, ingredient_removed, *_converted, ingredient_normalized
	IngredientID   string      `json:"ingredient_id,omitempty"`
	IngredientName string      `json:"ingredient_name,omitempty"`
	Field          string      `json:"field,omitempty"`
	CurrentValue   any         `json:"current_value,omitempty"`
	NewValue       any         `json:"new_value,omitempty"`
	CurrentUnit    string      `json:"current_unit,omitempty"`
	NewUnit        string      `json:"new_unit,omitempty"`
	IngredientData *Ingredient `json:"ingredient_data,omitempty"`

	// ingredient_substituted
	OldIngredientID    string      `json:"old_ingredient_id,omitempty"`
	NewIngredientID    string      `json:"new_ingredient_id,omitempty"`
	OldIngredientData  *Ingredient `json:"old_ingredient_data,omitempty"`
	NewIngredientData  *Ingredient `json:"new_ingredient_data,omitempty"`
	Amount             float64     `json:"amount,omitempty"`
	Unit               string      `json:"unit,omitempty"`
	Use                HopUse      `json:"use,omitempty"`
	Time               *float64    `json:"time,omitempty"`
	SubstitutionReason string      `json:"substitution_reason,omitempty"`
	ConfidenceScore    float64     `json:"confidence_score,omitempty"`

	ChangeReason string `json:"change_reason"`
	Strategy     string `json:"strategy,omitempty"`
}
