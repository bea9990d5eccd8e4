package server

// StartRequest is the request body for start.
type StartRequest struct {
	SampleRate float64 `json:"sample_rate" validate:"required,gte=8000,lte=192000"`
	Bars       int     `json:"bars" validate:"omitempty,gte=1,lte=512"`
}
