package validate

// Error is a failed form rule. Message is shown to the user as is.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }
