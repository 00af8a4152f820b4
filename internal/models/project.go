package models

import "time"

type Project struct {
	ID        string
	UserID    string
	Title     string
	Todos     []*Todo
	CreatedAt time.Time
}
