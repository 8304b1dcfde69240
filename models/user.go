package models

import (
	"time"
)

// User represents a Discord user with a balance and a free spin allowance
type User struct {
	DiscordID int64     `db:"discord_id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	FreeSpins int       `db:"free_spins"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
