package commons

// Response is the envelope every page is rendered from.
type Response[T any] struct {
	Success bool     `json:"success"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func SuccessResponse[T any](title string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Title:   title,
		Data:    &data,
	}
}

func MessageResponse[T any](title, message string) Response[T] {
	return Response[T]{
		Success: true,
		Title:   title,
		Message: message,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Title:   "Something went wrong",
		Message: message,
		Errors:  errors,
	}
}
