package schedule

// MalformedOutputError is returned when no extraction strategy recovered a
// JSON object from the generated text. The raw text is kept for diagnostics.
type MalformedOutputError struct {
	Raw string
}

func (e *MalformedOutputError) Error() string {
	return "generated content was not valid JSON"
}

// InvalidPayloadError is returned when an extracted schedule payload fails
// structural validation.
type InvalidPayloadError struct {
	Reason string
}

func (e *InvalidPayloadError) Error() string {
	return e.Reason
}
