package handler

import "github.com/xiaoying/sales-assistant/internal/core/ports"

func toCreateCustomerInput(req createCustomerRequest) ports.CreateCustomerInput {
	return ports.CreateCustomerInput{
		Name:         req.Name,
		Source:       req.Source,
		Contact:      req.Contact,
		Requirement:  req.Requirement,
		LastMeeting:  req.LastMeeting,
		NextFollowup: req.NextFollowup,
		Stage:        req.Stage,
	}
}

func toUpdateCustomerInput(req updateCustomerRequest) ports.UpdateCustomerInput {
	return ports.UpdateCustomerInput{
		Name:         req.Name,
		Source:       req.Source,
		Contact:      req.Contact,
		Requirement:  req.Requirement,
		LastMeeting:  req.LastMeeting,
		NextFollowup: req.NextFollowup,
		Stage:        req.Stage,
	}
}
