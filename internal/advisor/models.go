package advisor

import "time"

// Conversation roles, matching the wire roles of the generative backend.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of an advisory conversation.
type Message struct {
	// Role is RoleUser or RoleModel.
	Role string `json:"role"`

	// Text is the turn's content.
	Text string `json:"text"`

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// Document is a static reference document grounding the advisor's answers.
type Document struct {
	// Name is the source file name, for logging.
	Name string

	// MIMEType describes the payload (application/pdf for the agronomy
	// references).
	MIMEType string

	// Data is the raw document bytes.
	Data []byte
}
