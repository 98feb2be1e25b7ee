package models

import (
	"time"

	"github.com/google/uuid"
)

// Users sign in through the wallet login service. The wiki keeps a copy of
// each user it has seen so pages can show and search authors.
type User struct {
	ID           uuid.UUID `db:"id"`
	DisplayName  string    `db:"display_name"`
	RadixAddress string    `db:"radix_address"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	LastSeenAt   time.Time `db:"last_seen_at"`
}

func (u *User) BestName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if len(u.RadixAddress) > 16 {
		return u.RadixAddress[:10] + "…" + u.RadixAddress[len(u.RadixAddress)-6:]
	}
	if u.RadixAddress != "" {
		return u.RadixAddress
	}
	return "Anonymous"
}
