package folder

// Outcome discriminates a Result.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
	FailedUnknown
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case FailedUnknown:
		return "failed_unknown"
	default:
		return "unknown"
	}
}

// Error is one service-reported problem with a mutation.
type Error struct {
	Message string `json:"message"`
}

// Result is the outcome of a Save or Delete call.
// A Failed result always carries at least one Error; the order of Errors is the
// order the service reported them in.
type Result struct {
	outcome Outcome
	errors  []Error
}

// Success reports a mutation that went through.
func Success() Result { return Result{outcome: Succeeded} }

// Unknown reports a mutation that did not succeed and gave no reason.
func Unknown() Result { return Result{outcome: FailedUnknown} }

// Failure reports a mutation rejected with errs. Without errors it degrades to Unknown.
func Failure(errs ...Error) Result {
	if len(errs) == 0 {
		return Unknown()
	}
	cp := make([]Error, len(errs))
	copy(cp, errs)
	return Result{outcome: Failed, errors: cp}
}

// FailureMessage is shorthand for Failure with a single message.
func FailureMessage(msg string) Result { return Failure(Error{Message: msg}) }

func (r Result) Outcome() Outcome { return r.outcome }

func (r Result) Succeeded() bool { return r.outcome == Succeeded }

// Errors returns a copy of the reported errors.
func (r Result) Errors() []Error {
	if len(r.errors) == 0 {
		return nil
	}
	cp := make([]Error, len(r.errors))
	copy(cp, r.errors)
	return cp
}

// FirstMessage returns the message of the first reported error.
func (r Result) FirstMessage() (string, bool) {
	if r.outcome != Failed || len(r.errors) == 0 {
		return "", false
	}
	return r.errors[0].Message, true
}
