package services

import (
	"strings"

	"github.com/SanskarBabel/BuyerBase/models"
	"gorm.io/gorm"
)

// pageSize is fixed: the buyer list always pages by ten.
const pageSize = 10

// BuyerFilters is a validated list request. Zero-value string filters mean
// "not filtered"; SortBy and SortOrder receive defaults during validation,
// while Page must be a positive integer.
type BuyerFilters struct {
	Page         int    `json:"page"`
	Search       string `json:"search"`
	City         string `json:"city"`
	PropertyType string `json:"propertyType"`
	Status       string `json:"status"`
	Timeline     string `json:"timeline"`
	SortBy       string `json:"sortBy"`
	SortOrder    string `json:"sortOrder"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type BuyerPage struct {
	Data       []models.Buyer `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// sortColumns whitelists the sortable fields and maps them to columns, so
// a request can never smuggle arbitrary SQL into the ORDER BY clause.
var sortColumns = map[string]string{
	"fullName":     "full_name",
	"phone":        "phone",
	"city":         "city",
	"propertyType": "property_type",
	"status":       "status",
	"updatedAt":    "updated_at",
}

// ValidateFilters normalizes a list request in place: defaults for sortBy
// and sortOrder, enum checks on the optional exact-match filters. Page must
// already be set; the HTTP layer defaults an absent page parameter to 1,
// and an explicit non-positive value is rejected rather than coerced.
func ValidateFilters(f *BuyerFilters) *ValidationError {
	verr := &ValidationError{}

	if f.Page < 1 {
		verr.add("page", "page must be a positive integer")
	}
	if f.SortBy == "" {
		f.SortBy = "updatedAt"
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		verr.add("sortBy", "sortBy must be one of: fullName, phone, city, propertyType, status, updatedAt")
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}
	if f.SortOrder != "asc" && f.SortOrder != "desc" {
		verr.add("sortOrder", "sortOrder must be asc or desc")
	}
	if f.City != "" {
		checkEnum(verr, "city", f.City, Cities)
	}
	if f.PropertyType != "" {
		checkEnum(verr, "propertyType", f.PropertyType, PropertyTypes)
	}
	if f.Status != "" {
		checkEnum(verr, "status", f.Status, Statuses)
	}
	if f.Timeline != "" {
		checkEnum(verr, "timeline", f.Timeline, Timelines)
	}

	return verr.orNil()
}

// List returns one page of buyers matching the filters plus the total
// match count and page count for the pager.
func (s *BuyerService) List(f BuyerFilters) (*BuyerPage, error) {
	if verr := ValidateFilters(&f); verr != nil {
		return nil, verr
	}

	q := applyBuyerFilters(s.db.Model(&models.Buyer{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	direction := "ASC"
	if f.SortOrder == "desc" {
		direction = "DESC"
	}

	buyers := make([]models.Buyer, 0, pageSize)
	err := q.
		Order(sortColumns[f.SortBy] + " " + direction).
		Order("id " + direction). // deterministic tiebreak
		Offset((f.Page - 1) * pageSize).
		Limit(pageSize).
		Find(&buyers).Error
	if err != nil {
		return nil, err
	}

	pages := int((total + pageSize - 1) / pageSize)
	return &BuyerPage{
		Data: buyers,
		Pagination: Pagination{
			Page:  f.Page,
			Limit: pageSize,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func applyBuyerFilters(q *gorm.DB, f BuyerFilters) *gorm.DB {
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(full_name) LIKE ? OR lower(phone) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Timeline != "" {
		q = q.Where("timeline = ?", f.Timeline)
	}
	return q
}
