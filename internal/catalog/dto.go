// AngelaMos | 2026
// dto.go

package catalog

type CreateResourceRequest struct {
	ID           string `json:"id"            validate:"required,min=1,max=64"`
	Title        string `json:"title"         validate:"required,min=1,max=200"`
	Description  string `json:"description"   validate:"max=1000"`
	Category     string `json:"category"      validate:"required,max=100"`
	Type         string `json:"type"          validate:"required,oneof=camera alert report policy user integration page"`
	URL          string `json:"url"           validate:"required,max=2048"`
	Status       string `json:"status"        validate:"omitempty,oneof=active inactive warning error"`
	Priority     string `json:"priority"      validate:"omitempty,oneof=low medium high critical"`
	PlanRequired string `json:"plan_required" validate:"omitempty,oneof=basic pro business enterprise"`
}

type ResourceResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Type         TypeStyle `json:"type"`
	URL          string    `json:"url"`
	Status       string    `json:"status,omitempty"`
	Priority     string    `json:"priority,omitempty"`
	PlanRequired string    `json:"plan_required,omitempty"`
}

func ToResourceResponse(r Resource) ResourceResponse {
	resp := ResourceResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Type:        r.Type.Style(),
		URL:         r.URL,
		Status:      string(r.Status),
		Priority:    string(r.Priority),
	}
	if r.PlanRequired != nil {
		resp.PlanRequired = r.PlanRequired.String()
	}
	return resp
}

func ToResourceResponseList(resources []Resource) []ResourceResponse {
	responses := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		responses = append(responses, ToResourceResponse(r))
	}
	return responses
}

func (req CreateResourceRequest) toRecord() Record {
	return Record{
		ID:           req.ID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Type:         req.Type,
		URL:          req.URL,
		Status:       req.Status,
		Priority:     req.Priority,
		PlanRequired: req.PlanRequired,
	}
}
