package models

import "time"

type Testimonial struct {
	ID         string     `json:"id"`
	AuthorName string     `json:"authorName"`
	Role       AuthorRole `json:"role"`
	Message    string     `json:"message"`
	Rating     int        `json:"rating"`
	CreatedAt  time.Time  `json:"createdAt"`
}
