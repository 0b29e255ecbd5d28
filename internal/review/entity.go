// AngelaMos | 2026
// entity.go

// Package review holds the review feed of one target item: filtering, stable
// sorting and the idempotent "helpful" vote of a single viewer.
package review

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	default:
		return "", false
	}
}

type Review struct {
	ID               int64
	TargetID         string
	UserID           string
	UserName         string
	Rating           int
	Title            string
	Body             string
	Images           []string
	VerifiedPurchase bool
	HelpfulCount     int
	CreatedAt        time.Time
	Status           Status
}

// Images is stored as a JSONB array.
type Images []string

func (im Images) Value() (driver.Value, error) {
	if im == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(im))
}

func (im *Images) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*im = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan images: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*[]string)(im))
}

type Record struct {
	ID               int64     `db:"id"`
	TargetID         string    `db:"target_id"`
	UserID           string    `db:"user_id"`
	UserName         string    `db:"user_name"`
	Rating           int       `db:"rating"`
	Title            string    `db:"title"`
	Body             string    `db:"body"`
	Images           Images    `db:"images"`
	VerifiedPurchase bool      `db:"verified_purchase"`
	HelpfulCount     int       `db:"helpful_count"`
	CreatedAt        time.Time `db:"created_at"`
	Status           string    `db:"status"`
}

var errBadRating = errors.New("rating out of range")

// FromRecord rejects rows whose rating falls outside [1,5]; every Review in
// memory carries a valid rating.
func FromRecord(rec Record) (Review, error) {
	if rec.Rating < MinRating || rec.Rating > MaxRating {
		return Review{}, fmt.Errorf("review %d: %w", rec.ID, errBadRating)
	}

	status, ok := ParseStatus(rec.Status)
	if !ok {
		status = StatusPending
	}

	return Review{
		ID:               rec.ID,
		TargetID:         rec.TargetID,
		UserID:           rec.UserID,
		UserName:         rec.UserName,
		Rating:           rec.Rating,
		Title:            rec.Title,
		Body:             rec.Body,
		Images:           []string(rec.Images),
		VerifiedPurchase: rec.VerifiedPurchase,
		HelpfulCount:     max(rec.HelpfulCount, 0),
		CreatedAt:        rec.CreatedAt,
		Status:           status,
	}, nil
}

func FromRecords(records []Record) []Review {
	reviews := make([]Review, 0, len(records))
	for _, rec := range records {
		r, err := FromRecord(rec)
		if err != nil {
			slog.Warn("skipping review", "id", rec.ID, "error", err)
			continue
		}
		reviews = append(reviews, r)
	}
	return reviews
}
