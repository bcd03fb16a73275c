package domain

// Tag labels posts. Alias is the URL-safe key; Weight drives display
// ordering (heavier tags first within the (weight, title) sort).
type Tag struct {
	ID     int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title  string `gorm:"column:title;size:200" json:"title"`
	Alias  string `gorm:"column:alias;uniqueIndex;size:200" json:"alias"`
	Weight int    `gorm:"column:weight;default:0" json:"weight"`
}

func (Tag) TableName() string {
	return "tags"
}

// CreateTagRequest creates a tag
type CreateTagRequest struct {
	Title  string `json:"title" binding:"required"`
	Alias  string `json:"alias" binding:"required"`
	Weight int    `json:"weight"`
}
