// AngelaMos | 2026
// dto.go

package palette

import (
	"github.com/carterperez-dev/templates/resource-directory/internal/catalog"
)

type QueryRequest struct {
	Query string `json:"query" validate:"max=256"`
}

type KeyRequest struct {
	Key string `json:"key" validate:"required,max=32"`
}

type SessionResponse struct {
	ID       string                     `json:"id"`
	State    string                     `json:"state"`
	Query    string                     `json:"query"`
	Searched bool                       `json:"searched"`
	Selected int                        `json:"selected_index"`
	Results  []catalog.ResourceResponse `json:"results"`
}

type NavigationResponse struct {
	ResourceID string `json:"resource_id"`
	URL        string `json:"url"`
}

type KeyResponse struct {
	Session    SessionResponse     `json:"session"`
	Navigation *NavigationResponse `json:"navigation,omitempty"`
}

type ReloadResponse struct {
	Session SessionResponse `json:"session"`
	Applied bool            `json:"applied"`
}

func ToSessionResponse(id string, snap Snapshot) SessionResponse {
	return SessionResponse{
		ID:       id,
		State:    snap.State.String(),
		Query:    snap.Query,
		Searched: snap.Searched,
		Selected: snap.Selected,
		Results:  catalog.ToResourceResponseList(snap.Results),
	}
}

func toNavigationResponse(nav *Navigation) *NavigationResponse {
	if nav == nil {
		return nil
	}
	return &NavigationResponse{
		ResourceID: nav.ResourceID,
		URL:        nav.URL,
	}
}
