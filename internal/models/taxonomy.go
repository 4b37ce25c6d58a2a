package models

import "time"

// Taxonomy is one (value, label) entry of a controlled vocabulary. Flat
// ontologies leave Parent empty; dual-select children carry the code of
// their primary entry in Parent.
type Taxonomy struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:64;not null;index:idx_taxonomies_name_seq" json:"name"`
	Parent string `gorm:"size:255;default:''" json:"parent"`
	Value  string `gorm:"size:255;not null" json:"value"`
	Label  string `gorm:"size:255;not null" json:"label"`
	Seq    int    `gorm:"not null;default:0;index:idx_taxonomies_name_seq" json:"seq"`

	CreatedAt time.Time `json:"created_at"`
}

// ZipCodeTown is one town choice for a country, loaded lazily per country
// code. Value carries the "<country> / <zip> <town>" composite the UI keys
// its cross filters on; Label is the display form.
type ZipCodeTown struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CountryCode string `gorm:"size:8;not null;index" json:"country_code"`
	Value       string `gorm:"size:255;not null" json:"value"`
	Label       string `gorm:"size:255;not null" json:"label"`
	Seq         int    `gorm:"not null;default:0" json:"seq"`
}
