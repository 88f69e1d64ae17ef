package upload

import "time"

// Upload is a file stored under the uploads directory and served as static.
type Upload struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID       string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Purpose      string    `json:"purpose" gorm:"type:varchar(32);not null;default:avatar"`
	OriginalName string    `json:"original_name"`
	FilePath     string    `json:"-"`
	FileURL      string    `json:"url"`
	MimeType     string    `json:"mime_type" gorm:"type:varchar(64)"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Upload) TableName() string { return "uploads" }

const PurposeAvatar = "avatar"
