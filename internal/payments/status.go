package payments

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
	StatusRecord    Status = "record"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded, StatusRecord:
		return true
	}
	return false
}

type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodGCash        Method = "gcash"
	MethodCoins        Method = "coins"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodGCash, MethodCoins:
		return true
	}
	return false
}

type Action string

const (
	ActionApprove  Action = "approve"
	ActionProcess  Action = "process"
	ActionRecord   Action = "record"
	ActionUnrecord Action = "unrecord"
	ActionCancel   Action = "cancel"
	ActionFail     Action = "fail"
	ActionUpdate   Action = "update"
	ActionCreate   Action = "create"
)

// transitions is the complete payment state machine. Any (status, action)
// pair missing here is rejected.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusCompleted,
		ActionProcess: StatusCompleted,
		ActionCancel:  StatusFailed,
		ActionFail:    StatusFailed,
	},
	StatusCompleted: {
		ActionRecord: StatusRecord,
		ActionCancel: StatusRefunded,
		ActionFail:   StatusFailed,
	},
	StatusRecord: {
		ActionUnrecord: StatusCompleted,
	},
}

// NextStatus returns the status a payment moves to when action is applied, or
// a *StateConflictError when the action is not allowed from current.
func NextStatus(current Status, action Action) (Status, error) {
	next, ok := transitions[current][action]
	if !ok {
		return "", &StateConflictError{Action: action, Status: current}
	}
	return next, nil
}

// Reservation states touched by the payment workflow.
const (
	ReservationPaymentPending = "pending"
	ReservationPaymentPaid    = "paid"
	ReservationPaymentOverdue = "overdue"

	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
)

type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
	RoleSystem     Role = "system"
)

// Actor is whoever triggers a ledger operation.
type Actor struct {
	UserID int64
	Role   Role
}

// SystemActor is used by maintenance jobs.
var SystemActor = Actor{Role: RoleSystem}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperadmin || a.Role == RoleSystem
}

func (a Actor) IsSuperadmin() bool {
	return a.Role == RoleSuperadmin
}

func (a Actor) label() string {
	if a.Role == RoleSystem {
		return "system"
	}
	return "user:" + itoa(a.UserID)
}
