package models

import "time"

// TmpBlob parks uploaded photo bytes between wizard steps under an opaque
// row id. A blob is consumed exactly once on commit (pop) or dropped when
// the wizard is abandoned.
type TmpBlob struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UUID     string `gorm:"size:36;not null;index" json:"uuid"`
	Filename string `gorm:"size:255;not null" json:"filename"`
	Content  []byte `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
