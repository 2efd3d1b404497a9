package models

import (
	"time"
)

// Book is an uploaded source document. Rows are immutable after creation;
// page/char counts may legitimately be zero when extraction failed.
type Book struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	OriginalFilename string    `gorm:"type:varchar(255);not null" json:"original_filename"`
	StoragePath      string    `gorm:"type:varchar(255);not null" json:"-"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	PageCount        int       `json:"page_count"`
	CharCount        int       `json:"char_count"`
	SourceLanguage   string    `gorm:"type:varchar(5);default:'auto'" json:"source_language"`
	UploadDate       time.Time `gorm:"autoCreateTime" json:"upload_date"`
}
