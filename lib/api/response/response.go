package response

import "refcontest/lib/clock"

type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Count         int         `json:"count,omitempty"`
	Success       bool        `json:"success" validate:"required"`
	StatusMessage string      `json:"status_message"`
	Timestamp     string      `json:"timestamp"`
}

func Ok(data interface{}) Response {
	return Response{
		Data:          data,
		Success:       true,
		StatusMessage: "Success",
		Timestamp:     clock.Now(),
	}
}

// List wraps a slice result together with its length.
func List(data interface{}, count int) Response {
	r := Ok(data)
	r.Count = count
	return r
}

func Error(message string) Response {
	return Response{
		Success:       false,
		StatusMessage: message,
		Timestamp:     clock.Now(),
	}
}
