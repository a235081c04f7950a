package client

// NameRequest carries an encoded folder name.
type NameRequest struct {
	Name string `json:"name"`
}

// ItemRequest files an item; an empty ID lets the server pick one.
type ItemRequest struct {
	ID string `json:"id,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
