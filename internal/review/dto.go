// AngelaMos | 2026
// dto.go

package review

import (
	"slices"
	"time"
)

type OpenViewRequest struct {
	TargetID     string `json:"target_id"     validate:"required,max=128"`
	Rating       int    `json:"rating"`
	VerifiedOnly bool   `json:"verified_only"`
	Sort         string `json:"sort"          validate:"max=32"`
	Limit        int    `json:"limit"         validate:"gte=0"`
}

// FilterRequest accepts any rating; out-of-range values clear the filter.
type FilterRequest struct {
	Rating       int  `json:"rating"`
	VerifiedOnly bool `json:"verified_only"`
}

type SortRequest struct {
	Sort string `json:"sort" validate:"max=32"`
}

type SubmitReviewRequest struct {
	UserName string   `json:"user_name" validate:"required,min=1,max=100"`
	Rating   int      `json:"rating"    validate:"required,min=1,max=5"`
	Title    string   `json:"title"     validate:"max=200"`
	Body     string   `json:"body"      validate:"required,min=1,max=5000"`
	Images   []string `json:"images"    validate:"max=10,dive,url,max=2048"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type ReviewResponse struct {
	ID               int64     `json:"id"`
	TargetID         string    `json:"target_id"`
	UserName         string    `json:"user_name"`
	Rating           int       `json:"rating"`
	Title            string    `json:"title,omitempty"`
	Body             string    `json:"body"`
	Images           []string  `json:"images,omitempty"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	HelpfulCount     int       `json:"helpful_count"`
	CreatedAt        time.Time `json:"created_at"`
	Status           string    `json:"status"`
	Voted            bool      `json:"voted"`
}

type ViewResponse struct {
	ID           string           `json:"id"`
	TargetID     string           `json:"target_id"`
	Rating       int              `json:"rating,omitempty"`
	VerifiedOnly bool             `json:"verified_only"`
	Sort         string           `json:"sort"`
	Total        int              `json:"total"`
	Reviews      []ReviewResponse `json:"reviews"`
}

type VoteResponse struct {
	Applied bool         `json:"applied"`
	View    ViewResponse `json:"view"`
}

type SubmitResponse struct {
	Review ReviewResponse `json:"review"`
	View   ViewResponse   `json:"view"`
}

func ToReviewResponse(r Review, voted bool) ReviewResponse {
	return ReviewResponse{
		ID:               r.ID,
		TargetID:         r.TargetID,
		UserName:         r.UserName,
		Rating:           r.Rating,
		Title:            r.Title,
		Body:             r.Body,
		Images:           r.Images,
		VerifiedPurchase: r.VerifiedPurchase,
		HelpfulCount:     r.HelpfulCount,
		CreatedAt:        r.CreatedAt,
		Status:           string(r.Status),
		Voted:            voted,
	}
}

func ToReviewResponseList(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ToReviewResponse(r, false))
	}
	return out
}

func ToViewResponse(id string, snap Snapshot) ViewResponse {
	reviews := make([]ReviewResponse, 0, len(snap.Results))
	for _, r := range snap.Results {
		_, voted := slices.BinarySearch(snap.Voted, r.ID)
		reviews = append(reviews, ToReviewResponse(r, voted))
	}

	return ViewResponse{
		ID:           id,
		TargetID:     snap.TargetID,
		Rating:       snap.Filter.Rating,
		VerifiedOnly: snap.Filter.VerifiedOnly,
		Sort:         snap.Sort.String(),
		Total:        snap.Total,
		Reviews:      reviews,
	}
}

func (req SubmitReviewRequest) toSubmission() Submission {
	return Submission{
		UserName: req.UserName,
		Rating:   req.Rating,
		Title:    req.Title,
		Body:     req.Body,
		Images:   req.Images,
	}
}
