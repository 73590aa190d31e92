package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WineVintageEvolutionScore is a per-year maturity/drinkability rating a user
// assigns to a vintage. Re-rating the same (user, vintage, year) overwrites.
type WineVintageEvolutionScore struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WineVintageID uuid.UUID       `gorm:"column:wine_vintage_id;type:uuid;not null;uniqueIndex:ux_evolution_scores_user_vintage_year"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_evolution_scores_user_vintage_year"`
	Year          int             `gorm:"column:year;not null;uniqueIndex:ux_evolution_scores_user_vintage_year"`
	Score         decimal.Decimal `gorm:"column:score;type:numeric(5,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
