// ===============================
// File: internal/fetch/outcome.go
// ===============================
package fetch

// FailKind classifies why a vendor request produced no data. The selector
// keys its continue/abort decisions off this instead of parsing log text.
type FailKind int

const (
	// FailNone marks a successful or empty outcome.
	FailNone FailKind = iota
	// FailTimeout is a context-deadline abort; the next candidate is tried.
	FailTimeout
	// FailRateLimited is HTTP 429; worth one backoff-and-retry on the same
	// candidate before moving on.
	FailRateLimited
	// FailServer is HTTP 5xx; skip ahead (or return empty for optional
	// endpoints that are known to flap).
	FailServer
	// FailBlocked is a transport-level refusal (DNS, connection reset,
	// TLS). Retrying siblings is pointless, the whole operation aborts.
	FailBlocked
	// FailMalformed covers non-JSON bodies, unexpected shapes, oversized
	// payloads and unexpected 4xx statuses; treated as "no data here".
	FailMalformed
	// FailCanceled means the caller's context died. Remaining candidates
	// would fail identically, so the operation ends here.
	FailCanceled
)

func (k FailKind) String() string {
	switch k {
	case FailNone:
		return "none"
	case FailTimeout:
		return "timeout"
	case FailRateLimited:
		return "rate_limited"
	case FailServer:
		return "server_error"
	case FailBlocked:
		return "blocked"
	case FailMalformed:
		return "malformed"
	case FailCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Outcome is the internal result of one vendor request. Adapters still
// resolve to a plain token slice at their public boundary; the typed form
// exists so retry/skip logic stays testable.
type Outcome struct {
	Body   []byte
	Status int
	Kind   FailKind
	Err    error
}

// OK reports whether the request yielded a usable body.
func (o Outcome) OK() bool {
	return o.Kind == FailNone && len(o.Body) > 0
}

// Empty reports a successful request that carried no data.
func (o Outcome) Empty() bool {
	return o.Kind == FailNone && len(o.Body) == 0
}

func success(status int, body []byte) Outcome {
	return Outcome{Status: status, Body: body}
}

func failure(kind FailKind, status int, err error) Outcome {
	return Outcome{Status: status, Kind: kind, Err: err}
}
