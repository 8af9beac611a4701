package model

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Flashcard struct {
	ID        string
	OwnerID   string
	Subject   string
	Front     string
	Back      string
	Mastered  bool
	CreatedAt time.Time
}

type Note struct {
	ID        string
	OwnerID   string
	Subject   string
	Title     string
	Content   string
	CreatedAt time.Time
}

// SubjectProgress is derived from the owner's flashcards on every read
// and never stored.
type SubjectProgress struct {
	Total    int `json:"total"`
	Mastered int `json:"mastered"`
}
