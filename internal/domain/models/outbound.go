package models

// OutboundMessageRequest is a text message pushed to a staff phone.
type OutboundMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message" binding:"required"`
}
