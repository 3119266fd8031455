package executor

// Kind tells which branch of a Result is populated.
type Kind int

const (
	// Success means the exchange completed; any HTTP status counts.
	Success Kind = iota
	// TimedOut means the transport gave up because a timeout elapsed.
	TimedOut
	// Failed covers every other transport-level failure.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case TimedOut:
		return "timedout"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one Execute call.
//
// BodyLength and Headers are only set for Success. The body bytes are not
// part of the Result; they stay inside the Executor until Drain is called.
// Message is only set for Failed.
type Result struct {
	Kind       Kind
	BodyLength int
	Headers    []string
	Message    string
}

// OK reports whether the exchange completed.
func (r Result) OK() bool {
	return r.Kind == Success
}

func succeeded(bodyLength int, headers []string) Result {
	if headers == nil {
		headers = []string{}
	}
	return Result{Kind: Success, BodyLength: bodyLength, Headers: headers}
}

func timedOut() Result {
	return Result{Kind: TimedOut}
}

func failed(message string) Result {
	return Result{Kind: Failed, Message: message}
}
