package folder

// WireResult is the JSON form of a Result exchanged with the folder service.
type WireResult struct {
	Succeeded bool    `json:"succeeded"`
	Errors    []Error `json:"errors,omitempty"`
}

// ToWire converts r into its JSON form.
func (r Result) ToWire() WireResult {
	return WireResult{Succeeded: r.Succeeded(), Errors: r.Errors()}
}

// Result converts the wire form back, inferring the outcome from the flag and error count.
func (w WireResult) Result() Result {
	if w.Succeeded {
		return Success()
	}
	return Failure(w.Errors...)
}
