package models

import "time"

type User struct {
	ID        string
	Username  string
	Password  string // argon2id hash, never plaintext
	CreatedAt time.Time
}
