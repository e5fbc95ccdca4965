package handler

import "github.com/xiaoying/sales-assistant/internal/core/domain"

// --- Request / Response types ---

// createCustomerRequest omits id; it is always generated by the server.
// Dates are calendar dates in YYYY-MM-DD form.
type createCustomerRequest struct {
	Name         string  `json:"name" validate:"required,max=50" example:"FutureForce"`
	Source       *string `json:"source,omitempty" example:"trade-show"`
	Contact      *string `json:"contact,omitempty" example:"contact@fd.com"`
	Requirement  *string `json:"requirement,omitempty" example:"AI localization"`
	LastMeeting  *string `json:"last_meeting,omitempty" validate:"omitempty,datetime=2006-01-02" format:"date" example:"2025-05-22"`
	NextFollowup *string `json:"next_followup,omitempty" validate:"omitempty,datetime=2006-01-02" format:"date" example:"2025-05-26"`
	Stage        *string `json:"stage,omitempty" example:"demo"`
}

// updateCustomerRequest carries only the fields to change. An id in the body
// is ignored.
type updateCustomerRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=50"`
	Source       *string `json:"source,omitempty"`
	Contact      *string `json:"contact,omitempty"`
	Requirement  *string `json:"requirement,omitempty"`
	LastMeeting  *string `json:"last_meeting,omitempty" validate:"omitempty,datetime=2006-01-02" format:"date"`
	NextFollowup *string `json:"next_followup,omitempty" validate:"omitempty,datetime=2006-01-02" format:"date"`
	Stage        *string `json:"stage,omitempty" example:"closed"`
}

type customerMutationResponse struct {
	Status   string           `json:"status" example:"ok"`
	Message  string           `json:"message" example:"customer added"`
	Customer *domain.Customer `json:"customer"`
}

type statusMessageResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message"`
}

// errorEnvelope documents the error body rendered by the central error handler.
type errorEnvelope struct {
	Status  string `json:"status" example:"error"`
	Code    int    `json:"code" example:"404"`
	Message string `json:"message" example:"customer not found"`
}
