package domain

// InvoiceStatus is the lifecycle state of a mirrored invoice.
// "open" is the only non-terminal status; transitions are monotonic
// toward a terminal state and never reversed by sync.
type InvoiceStatus string

const (
	InvoiceStatusOpen      InvoiceStatus = "open"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCompleted InvoiceStatus = "completed"
	InvoiceStatusVoided    InvoiceStatus = "voided"
)

// Terminal reports whether the status ends the chase lifecycle.
func (s InvoiceStatus) Terminal() bool {
	return s != InvoiceStatusOpen
}

// ChaseEmailStatus is the delivery state of one reminder attempt.
type ChaseEmailStatus string

const (
	ChaseEmailStatusScheduled ChaseEmailStatus = "scheduled"
	ChaseEmailStatusSent      ChaseEmailStatus = "sent"
	ChaseEmailStatusCancelled ChaseEmailStatus = "cancelled"
)

// Chase stages run 1 through 4; there is no stage 0.
const (
	FirstChaseStage = 1
	FinalChaseStage = 4
)

// Pause reasons recorded when chasing stops without the invoice closing.
const (
	PauseReasonReplied      = "replied"
	PauseReasonUnsubscribed = "unsubscribed"
)

// Activity record types appended to an invoice's audit trail.
const (
	ActivityTypeCall  = "call"
	ActivityTypeReply = "reply"
	ActivityTypePaid  = "paid"
	ActivityTypeVoid  = "void"
)
