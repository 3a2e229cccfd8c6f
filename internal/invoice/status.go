package invoice

// Status represents the lifecycle state of an invoice.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusOverdue       Status = "OVERDUE"
	StatusVoid          Status = "VOID"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusVoid:
		return true
	}

	return false
}

// IsTerminal reports whether no further payment or void can change the invoice.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusVoid
}

func (s Status) AcceptsPayment() bool {
	return !s.IsTerminal()
}

// CanBecomeOverdue reports whether an overdue check may move the invoice to OVERDUE.
func (s Status) CanBecomeOverdue() bool {
	return s == StatusSent || s == StatusPartiallyPaid
}
