package service

import (
	"errors"
	"math"

	"github.com/dogmatus07/lynkevo-insights/internal/model"
	"gorm.io/gorm"
)

// RecomputeCategoryPercentages refreshes the derived percentage of every
// ticket category belonging to a report: cases_count divided by the sum of
// cases across the report's categories, as a percentage rounded to two
// decimals. It runs on every category write so the stored values never
// drift from the counts.
func RecomputeCategoryPercentages(db *gorm.DB, reportID uint) error {
	var categories []model.TicketCategory
	if err := db.Where("report_id = ?", reportID).Find(&categories).Error; err != nil {
		return err
	}

	var total int
	for _, cat := range categories {
		total += cat.CasesCount
	}

	for i := range categories {
		percentage := 0.0
		if total > 0 {
			percentage = round2(float64(categories[i].CasesCount) / float64(total) * 100)
		}
		if categories[i].Percentage == percentage {
			continue
		}
		err := db.Model(&model.TicketCategory{}).
			Where("id = ?", categories[i].ID).
			Update("percentage", percentage).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// AddCategory appends a category row to a report and recomputes the
// percentages of the whole sibling set in the same transaction.
func AddCategory(db *gorm.DB, reportID uint, input CategoryInput) (*model.TicketCategory, error) {
	if !model.ValidTag(input.Tag) {
		return nil, NewValidationError("tag", "unknown ticket category tag")
	}
	if input.CasesCount < 0 {
		return nil, NewValidationError("cases_count", "cases_count must not be negative")
	}

	var report model.KPIReport
	if err := db.First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	category := model.TicketCategory{
		ReportID:   reportID,
		Tag:        input.Tag,
		SubTag:     input.SubTag,
		CasesCount: input.CasesCount,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		return RecomputeCategoryPercentages(tx, reportID)
	})
	if err != nil {
		return nil, err
	}

	if err := db.First(&category, category.ID).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
