package services

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/SanskarBabel/BuyerBase/models"
)

// Allowed enum values. These mirror the buyer form dropdowns; the database
// stores the display strings as-is.
var (
	Cities        = []string{"Chandigarh", "Mohali", "Zirakpur", "Panchkula", "Other"}
	PropertyTypes = []string{"Apartment", "Villa", "Plot", "Office", "Retail"}
	BHKValues     = []string{"1", "2", "3", "4", "Studio"}
	Purposes      = []string{"Buy", "Rent"}
	Timelines     = []string{"0-3m", "3-6m", ">6m", "Exploring"}
	Sources       = []string{"Website", "Referral", "Walk-in", "Call", "Other"}
	Statuses      = []string{"New", "Qualified", "Contacted", "Visited", "Negotiation", "Converted", "Dropped"}
)

var (
	fullNameRegex = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	phoneRegex    = regexp.MustCompile(`^\d{10,15}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const maxNotesLength = 1000

// CreateBuyerInput is a full buyer payload. Status defaults to New and
// Tags to an empty list when omitted.
type CreateBuyerInput struct {
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	PropertyType string   `json:"propertyType"`
	BHK          string   `json:"bhk"`
	Purpose      string   `json:"purpose"`
	BudgetMin    *int     `json:"budgetMin"`
	BudgetMax    *int     `json:"budgetMax"`
	Timeline     string   `json:"timeline"`
	Source       string   `json:"source"`
	Status       string   `json:"status"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`
}

// BuyerPatch is the partial-update payload. A nil pointer means the field
// was absent from the request and must be left untouched.
type BuyerPatch struct {
	FullName     *string   `json:"fullName"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	City         *string   `json:"city"`
	PropertyType *string   `json:"propertyType"`
	BHK          *string   `json:"bhk"`
	Purpose      *string   `json:"purpose"`
	BudgetMin    *int      `json:"budgetMin"`
	BudgetMax    *int      `json:"budgetMax"`
	Timeline     *string   `json:"timeline"`
	Source       *string   `json:"source"`
	Status       *string   `json:"status"`
	Notes        *string   `json:"notes"`
	Tags         *[]string `json:"tags"`
}

// ValidateCreate checks a full payload: per-field rules first, then the
// two cross-field rules (BHK conditional on property type, budget order).
// Returns nil when the payload is valid.
func ValidateCreate(in CreateBuyerInput) *ValidationError {
	verr := &ValidationError{}

	checkFullName(verr, in.FullName)
	checkPhone(verr, in.Phone)
	checkEmail(verr, in.Email)
	checkEnum(verr, "city", in.City, Cities)
	checkEnum(verr, "propertyType", in.PropertyType, PropertyTypes)
	checkEnum(verr, "purpose", in.Purpose, Purposes)
	checkEnum(verr, "timeline", in.Timeline, Timelines)
	checkEnum(verr, "source", in.Source, Sources)
	if in.Status != "" {
		checkEnum(verr, "status", in.Status, Statuses)
	}
	if in.BHK != "" {
		checkEnum(verr, "bhk", in.BHK, BHKValues)
	}
	checkBudget(verr, "budgetMin", in.BudgetMin)
	checkBudget(verr, "budgetMax", in.BudgetMax)
	checkNotes(verr, in.Notes)

	// Cross-field rules only make sense once the individual fields parse.
	if !verr.has("bhk") && !verr.has("propertyType") {
		checkBHKRule(verr, in.PropertyType, in.BHK)
	}
	if !verr.has("budgetMin") && !verr.has("budgetMax") {
		checkBudgetRule(verr, in.BudgetMin, in.BudgetMax)
	}

	return verr.orNil()
}

// ValidateUpdate applies the per-field rules to whichever fields the patch
// carries. Cross-field rules are checked later against the merged record,
// since a patch alone cannot tell whether e.g. BHK is still required.
func ValidateUpdate(p BuyerPatch) *ValidationError {
	verr := &ValidationError{}

	if p.FullName != nil {
		checkFullName(verr, *p.FullName)
	}
	if p.Phone != nil {
		checkPhone(verr, *p.Phone)
	}
	if p.Email != nil {
		checkEmail(verr, *p.Email)
	}
	if p.City != nil {
		checkEnum(verr, "city", *p.City, Cities)
	}
	if p.PropertyType != nil {
		checkEnum(verr, "propertyType", *p.PropertyType, PropertyTypes)
	}
	if p.Purpose != nil {
		checkEnum(verr, "purpose", *p.Purpose, Purposes)
	}
	if p.Timeline != nil {
		checkEnum(verr, "timeline", *p.Timeline, Timelines)
	}
	if p.Source != nil {
		checkEnum(verr, "source", *p.Source, Sources)
	}
	if p.Status != nil {
		checkEnum(verr, "status", *p.Status, Statuses)
	}
	if p.BHK != nil && *p.BHK != "" {
		checkEnum(verr, "bhk", *p.BHK, BHKValues)
	}
	if p.BudgetMin != nil {
		checkBudget(verr, "budgetMin", p.BudgetMin)
	}
	if p.BudgetMax != nil {
		checkBudget(verr, "budgetMax", p.BudgetMax)
	}
	if p.Notes != nil {
		checkNotes(verr, *p.Notes)
	}

	return verr.orNil()
}

// validateMerged re-checks the cross-field invariants on the record as it
// would be stored after applying a patch. An update that flips the property
// type away from Apartment/Villa must also clear BHK, and vice versa.
func validateMerged(b models.Buyer) *ValidationError {
	verr := &ValidationError{}
	checkBHKRule(verr, b.PropertyType, b.BHK)
	checkBudgetRule(verr, b.BudgetMin, b.BudgetMax)
	return verr.orNil()
}

// importRequiredFields are the columns a CSV row must carry a non-empty
// value for, checked before the regular create rules so the report reads
// "<field> is required" rather than an enum mismatch.
var importRequiredFields = []string{"fullName", "phone", "city", "propertyType", "purpose", "timeline", "source"}

// ValidateImportRow validates one bulk-import row with the stricter
// required-field messages on top of the create rules.
func ValidateImportRow(in CreateBuyerInput) *ValidationError {
	verr := &ValidationError{}

	values := map[string]string{
		"fullName":     in.FullName,
		"phone":        in.Phone,
		"city":         in.City,
		"propertyType": in.PropertyType,
		"purpose":      in.Purpose,
		"timeline":     in.Timeline,
		"source":       in.Source,
	}
	for _, field := range importRequiredFields {
		if strings.TrimSpace(values[field]) == "" {
			verr.add(field, fmt.Sprintf("%s is required", field))
		}
	}

	if cerr := ValidateCreate(in); cerr != nil {
		for _, f := range cerr.Fields {
			if !verr.has(f.Field) {
				verr.Fields = append(verr.Fields, f)
			}
		}
	}

	return verr.orNil()
}

func checkFullName(verr *ValidationError, name string) {
	length := utf8.RuneCountInString(name)
	switch {
	case length < 2:
		verr.add("fullName", "Full name must be at least 2 characters")
	case length > 80:
		verr.add("fullName", "Full name must not exceed 80 characters")
	case !fullNameRegex.MatchString(name):
		verr.add("fullName", "Full name can only contain letters and spaces")
	}
}

func checkPhone(verr *ValidationError, phone string) {
	if !phoneRegex.MatchString(phone) {
		verr.add("phone", "Phone number must be 10-15 digits")
	}
}

func checkEmail(verr *ValidationError, email string) {
	if email != "" && !emailRegex.MatchString(email) {
		verr.add("email", "Invalid email format")
	}
}

func checkEnum(verr *ValidationError, field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		verr.add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
	}
}

func checkBudget(verr *ValidationError, field string, value *int) {
	if value != nil && *value <= 0 {
		verr.add(field, "Budget must be a positive whole number")
	}
}

func checkNotes(verr *ValidationError, notes string) {
	if utf8.RuneCountInString(notes) > maxNotesLength {
		verr.add("notes", "Notes must not exceed 1000 characters")
	}
}

func checkBHKRule(verr *ValidationError, propertyType, bhk string) {
	residential := propertyType == "Apartment" || propertyType == "Villa"
	if residential && bhk == "" {
		verr.add("bhk", "BHK is required for Apartment and Villa property types")
	}
	if !residential && bhk != "" {
		verr.add("bhk", "BHK must be empty for non-residential property types")
	}
}

func checkBudgetRule(verr *ValidationError, min, max *int) {
	if min != nil && max != nil && *max < *min {
		verr.add("budgetMax", "Maximum budget must be greater than or equal to minimum budget")
	}
}
