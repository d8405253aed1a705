package responses

// Response is the envelope of every HTTP reply.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Success(status int, data any) Response {
	return Response{Status: status, Message: "success", Data: data}
}

func Error(status int, message string) Response {
	return Response{Status: status, Message: message}
}
