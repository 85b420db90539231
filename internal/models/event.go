package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a user-created listing. All descriptive fields are optional
// strings; CreatedBy and CreatedOn are server-assigned and immutable.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventName   string             `bson:"event_name" json:"event_name"`
	EventType   string             `bson:"event_type" json:"event_type"`
	Location    string             `bson:"location" json:"location"`
	Description string             `bson:"description" json:"description"`
	Date        string             `bson:"date" json:"date"`
	CreatedBy   string             `bson:"created_by" json:"created_by"`
	ImageURL    string             `bson:"image_url" json:"image_url"`
	CreatedOn   time.Time          `bson:"created_on" json:"created_on"`
}

// EventType is a controlled-vocabulary entry used to populate selection lists.
type EventType struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventType string             `bson:"event_type" json:"event_type"`
}

// EventInput carries the caller-supplied fields for a new event.
type EventInput struct {
	EventName   string `json:"event_name" form:"event_name"`
	EventType   string `json:"event_type" form:"event_type"`
	Location    string `json:"location" form:"location"`
	Description string `json:"description" form:"description"`
	Date        string `json:"date" form:"date"`
	ImageURL    string `json:"image_url" form:"image_url"`
}

// EventPatch is a partial update: only non-nil fields are written.
// CreatedBy and CreatedOn are deliberately absent.
type EventPatch struct {
	EventName   *string `json:"event_name" form:"event_name"`
	EventType   *string `json:"event_type" form:"event_type"`
	Location    *string `json:"location" form:"location"`
	Description *string `json:"description" form:"description"`
	Date        *string `json:"date" form:"date"`
	ImageURL    *string `json:"image_url" form:"image_url"`
}

// SetDocument builds the $set payload for the patch. Empty when no field is supplied.
func (p EventPatch) SetDocument() bson.D {
	fields := bson.D{}
	if p.EventName != nil {
		fields = append(fields, bson.E{Key: "event_name", Value: *p.EventName})
	}
	if p.EventType != nil {
		fields = append(fields, bson.E{Key: "event_type", Value: *p.EventType})
	}
	if p.Location != nil {
		fields = append(fields, bson.E{Key: "location", Value: *p.Location})
	}
	if p.Description != nil {
		fields = append(fields, bson.E{Key: "description", Value: *p.Description})
	}
	if p.Date != nil {
		fields = append(fields, bson.E{Key: "date", Value: *p.Date})
	}
	if p.ImageURL != nil {
		fields = append(fields, bson.E{Key: "image_url", Value: *p.ImageURL})
	}
	return fields
}

// IsEmpty reports whether the patch supplies no fields.
func (p EventPatch) IsEmpty() bool {
	return len(p.SetDocument()) == 0
}

// Pagination describes one page of a listing for the presentation layer.
type Pagination struct {
	Page      int   `json:"page"`
	PerPage   int   `json:"per_page"`
	Total     int64 `json:"total"`
	PageCount int   `json:"page_count"`
}

// NewPagination computes page-count metadata for a listing.
func NewPagination(page, perPage int, total int64) Pagination {
	count := int(total) / perPage
	if int(total)%perPage != 0 {
		count++
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, PageCount: count}
}
