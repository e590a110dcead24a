package services

import (
	"encoding/json"
	"errors"

	"github.com/SanskarBabel/BuyerBase/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// historyLimit is how many recent audit entries travel with a buyer detail.
const historyLimit = 5

// BuyerService owns all buyer reads and writes. Every mutation and its
// matching history row commit inside one transaction so the audit trail
// can never silently fall behind the record it describes.
type BuyerService struct {
	db *gorm.DB
}

func NewBuyerService(db *gorm.DB) *BuyerService {
	return &BuyerService{db: db}
}

// BuyerDetail is a buyer plus its most recent history entries.
type BuyerDetail struct {
	Buyer   models.Buyer          `json:"buyer"`
	History []models.BuyerHistory `json:"history"`
}

// Create validates and inserts a new lead owned by ownerID, writing a
// single "created" history entry holding the full payload.
func (s *BuyerService) Create(input CreateBuyerInput, ownerID string) (*models.Buyer, error) {
	return s.create(input, ownerID, "created")
}

func (s *BuyerService) create(input CreateBuyerInput, ownerID, eventKey string) (*models.Buyer, error) {
	if verr := ValidateCreate(input); verr != nil {
		return nil, verr
	}

	buyer := buyerFromInput(input, ownerID)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&buyer).Error; err != nil {
			return err
		}
		return writeHistory(tx, buyer.ID, ownerID, Diff{eventKey: {Old: nil, New: input}})
	})
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

// Get returns the buyer and its five most recent history entries, newest
// first. Returns ErrNotFound when no buyer has that id.
func (s *BuyerService) Get(id string) (*BuyerDetail, error) {
	var buyer models.Buyer
	if err := s.db.First(&buyer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	history := make([]models.BuyerHistory, 0, historyLimit)
	err := s.db.
		Where("buyer_id = ?", id).
		Order("changed_at DESC").
		Order("id DESC"). // deterministic when entries share a timestamp
		Limit(historyLimit).
		Find(&history).Error
	if err != nil {
		return nil, err
	}

	return &BuyerDetail{Buyer: buyer, History: history}, nil
}

// Update applies a partial payload to the buyer owned by actingUserID.
// The load, ownership check, diff, write and history insert all run in one
// transaction, and the row is locked on load (SELECT ... FOR UPDATE) so a
// concurrent update cannot commit between the read the diff is computed
// from and the write that follows it.
// A patch that changes nothing still refreshes UpdatedAt but writes no
// history entry. The merged record is re-validated against the BHK and
// budget cross-field rules before anything is persisted.
func (s *BuyerService) Update(id string, patch BuyerPatch, actingUserID string) (*models.Buyer, error) {
	if verr := ValidateUpdate(patch); verr != nil {
		return nil, verr
	}

	var updated models.Buyer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Buyer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if current.OwnerID != actingUserID {
			return ErrForbidden
		}

		diff := BuildDiff(current, patch)
		merged := mergePatch(current, patch)
		if verr := validateMerged(merged); verr != nil {
			return verr
		}

		if err := tx.Save(&merged).Error; err != nil {
			return err
		}
		if len(diff) > 0 {
			if err := writeHistory(tx, id, actingUserID, diff); err != nil {
				return err
			}
		}

		updated = merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func buyerFromInput(in CreateBuyerInput, ownerID string) models.Buyer {
	status := in.Status
	if status == "" {
		status = "New"
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Buyer{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		City:         in.City,
		PropertyType: in.PropertyType,
		BHK:          in.BHK,
		Purpose:      in.Purpose,
		BudgetMin:    in.BudgetMin,
		BudgetMax:    in.BudgetMax,
		Timeline:     in.Timeline,
		Source:       in.Source,
		Status:       status,
		Notes:        in.Notes,
		Tags:         datatypes.NewJSONSlice(tags),
		OwnerID:      ownerID,
	}
}

func writeHistory(tx *gorm.DB, buyerID, changedBy string, diff Diff) error {
	payload, err := json.Marshal(diff)
	if err != nil {
		return err
	}
	entry := models.BuyerHistory{
		BuyerID:   buyerID,
		ChangedBy: changedBy,
		Diff:      datatypes.JSON(payload),
	}
	return tx.Create(&entry).Error
}
