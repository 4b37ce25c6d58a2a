package ontology

import (
	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/models"
)

// SeedFlat replaces the stored entries of a single-level family.
func SeedFlat(db *gorm.DB, family string, entries []Entry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", family).Delete(&models.Taxonomy{}).Error; err != nil {
			return err
		}
		for i, e := range entries {
			row := models.Taxonomy{Name: family, Value: e.Value, Label: e.Label, Seq: i + 1}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedDual replaces the stored entries of a parent/child family.
func SeedDual(db *gorm.DB, family string, list DualList) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", family).Delete(&models.Taxonomy{}).Error; err != nil {
			return err
		}
		seq := 0
		for _, parent := range list.Field1 {
			seq++
			row := models.Taxonomy{Name: family, Value: parent.Value, Label: parent.Label, Seq: seq}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			for _, child := range list.Field2[parent.Value] {
				seq++
				row := models.Taxonomy{
					Name: family, Parent: parent.Value,
					Value: child.Value, Label: child.Label, Seq: seq,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// SeedTowns replaces the zip/town list of one country.
func SeedTowns(db *gorm.DB, countryCode string, entries []Entry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("country_code = ?", countryCode).Delete(&models.ZipCodeTown{}).Error; err != nil {
			return err
		}
		for i, e := range entries {
			row := models.ZipCodeTown{CountryCode: countryCode, Value: e.Value, Label: e.Label, Seq: i + 1}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
