package entity

import "time"

// List is a named collection of tasks owned by exactly one user.
type List struct {
	ID        string
	Name      string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims the name and enforces its length bounds.
func (l *List) Normalize() error {
	name, err := NormalizeTitle("name", l.Name)
	if err != nil {
		return err
	}
	l.Name = name
	return nil
}
