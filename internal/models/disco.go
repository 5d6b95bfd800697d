package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Disco struct {
	ID          int64
	CreatedAt   time.Time
	UserID      int64
	Artist      string
	Genre       string
	Album       string
	Price       decimal.Decimal
	ImageURL    string
	Description string
	Tracks      string
}

// DiscoPatch holds a partial update. Nil fields keep the stored value
type DiscoPatch struct {
	UserID      *int64
	Artist      *string
	Genre       *string
	Album       *string
	Price       *decimal.Decimal
	ImageURL    *string
	Description *string
	Tracks      *string
}

func (p DiscoPatch) IsEmpty() bool {
	return p.UserID == nil &&
		p.Artist == nil &&
		p.Genre == nil &&
		p.Album == nil &&
		p.Price == nil &&
		p.ImageURL == nil &&
		p.Description == nil &&
		p.Tracks == nil
}
