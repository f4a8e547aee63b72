package domain

import "time"

// Assignment is a course assignment a ticket can reference.
type Assignment struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Location is a physical or virtual place where help happens.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// PersonalQueue is a staff member's private queue that tickets can be
// created against instead of the course-wide one.
type PersonalQueue struct {
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerUserId"`
	IsOpen    bool      `json:"isOpen"`
	CreatedAt time.Time `json:"createdAt"`
}
