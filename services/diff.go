package services

import (
	"slices"

	"github.com/SanskarBabel/BuyerBase/models"
	"gorm.io/datatypes"
)

// FieldChange records one side-by-side value pair inside a history diff.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Diff maps a changed field name to its before/after values. The creation
// events "created" and "imported" store the whole payload under a single
// synthetic key.
type Diff map[string]FieldChange

// BuildDiff compares the stored buyer with an update payload and returns
// an entry for every field the patch carries whose value actually differs.
// Fields absent from the patch never appear; an empty diff means no
// history entry is owed. Pure comparison, no side effects.
func BuildDiff(current models.Buyer, patch BuyerPatch) Diff {
	diff := Diff{}

	compareString(diff, "fullName", current.FullName, patch.FullName)
	compareString(diff, "email", current.Email, patch.Email)
	compareString(diff, "phone", current.Phone, patch.Phone)
	compareString(diff, "city", current.City, patch.City)
	compareString(diff, "propertyType", current.PropertyType, patch.PropertyType)
	compareString(diff, "bhk", current.BHK, patch.BHK)
	compareString(diff, "purpose", current.Purpose, patch.Purpose)
	compareInt(diff, "budgetMin", current.BudgetMin, patch.BudgetMin)
	compareInt(diff, "budgetMax", current.BudgetMax, patch.BudgetMax)
	compareString(diff, "timeline", current.Timeline, patch.Timeline)
	compareString(diff, "source", current.Source, patch.Source)
	compareString(diff, "status", current.Status, patch.Status)
	compareString(diff, "notes", current.Notes, patch.Notes)

	if patch.Tags != nil && !slices.Equal([]string(current.Tags), *patch.Tags) {
		diff["tags"] = FieldChange{Old: []string(current.Tags), New: *patch.Tags}
	}

	return diff
}

// mergePatch returns a copy of the stored buyer with the patch's present
// fields applied. Absent fields keep their stored values.
func mergePatch(current models.Buyer, patch BuyerPatch) models.Buyer {
	merged := current

	if patch.FullName != nil {
		merged.FullName = *patch.FullName
	}
	if patch.Email != nil {
		merged.Email = *patch.Email
	}
	if patch.Phone != nil {
		merged.Phone = *patch.Phone
	}
	if patch.City != nil {
		merged.City = *patch.City
	}
	if patch.PropertyType != nil {
		merged.PropertyType = *patch.PropertyType
	}
	if patch.BHK != nil {
		merged.BHK = *patch.BHK
	}
	if patch.Purpose != nil {
		merged.Purpose = *patch.Purpose
	}
	if patch.BudgetMin != nil {
		v := *patch.BudgetMin
		merged.BudgetMin = &v
	}
	if patch.BudgetMax != nil {
		v := *patch.BudgetMax
		merged.BudgetMax = &v
	}
	if patch.Timeline != nil {
		merged.Timeline = *patch.Timeline
	}
	if patch.Source != nil {
		merged.Source = *patch.Source
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.Notes != nil {
		merged.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		merged.Tags = datatypes.NewJSONSlice(slices.Clone(*patch.Tags))
	}

	return merged
}

func compareString(diff Diff, field, old string, incoming *string) {
	if incoming != nil && *incoming != old {
		diff[field] = FieldChange{Old: old, New: *incoming}
	}
}

func compareInt(diff Diff, field string, old, incoming *int) {
	if incoming == nil {
		return
	}
	if old == nil || *old != *incoming {
		var oldValue interface{}
		if old != nil {
			oldValue = *old
		}
		diff[field] = FieldChange{Old: oldValue, New: *incoming}
	}
}
