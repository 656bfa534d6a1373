package models

import (
	"slices"
	"time"
)

const MaxVendorCategories = 3

// Snapshot is the vendor state immediately before the most recent merge.
type Snapshot struct {
	Description string       `json:"description"`
	Products    string       `json:"products"`
	ImageURL    string       `json:"imageUrl"`
	Categories  []string     `json:"categories"`
	Status      VendorStatus `json:"status"`
}

type Vendor struct {
	ID               string       `json:"id"`
	BrandName        string       `json:"brandName"`
	OwnerName        string       `json:"ownerName"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone"`
	Instagram        string       `json:"instagram"`
	Description      string       `json:"description"`
	Products         string       `json:"products"`
	Categories       []string     `json:"categories"`
	Events           []string     `json:"events"`
	ImageURL         string       `json:"imageUrl"`
	ImageURLs        []string     `json:"imageUrls"`
	Status           VendorStatus `json:"status"`
	DeclineReason    string       `json:"declineReason"`
	ReapplyCount     int          `json:"reapplyCount"`
	PreviousSnapshot *Snapshot    `json:"previousSnapshot,omitempty"`
	SubmittedAt      time.Time    `json:"submittedAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func (v *Vendor) Clone() *Vendor {
	c := *v
	c.Categories = slices.Clone(v.Categories)
	c.Events = slices.Clone(v.Events)
	c.ImageURLs = slices.Clone(v.ImageURLs)
	if v.PreviousSnapshot != nil {
		s := *v.PreviousSnapshot
		s.Categories = slices.Clone(v.PreviousSnapshot.Categories)
		c.PreviousSnapshot = &s
	}
	return &c
}

// Application is what a brand submits through the public form.
type Application struct {
	BrandName   string   `json:"brandName"`
	OwnerName   string   `json:"ownerName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Instagram   string   `json:"instagram"`
	Description string   `json:"description"`
	Products    string   `json:"products"`
	Categories  []string `json:"categories"`
	Events      []string `json:"events"`
	ImageURL    string   `json:"imageUrl"`
}
