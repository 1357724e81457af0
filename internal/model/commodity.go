package model

type Commodity struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Unit     string `gorm:"type:varchar(20)" json:"unit"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	BuyHistories  []BuyHistory  `json:"buy_histories,omitempty"`
	SellHistories []SellHistory `json:"sell_histories,omitempty"`
}
