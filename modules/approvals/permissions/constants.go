package permissions

type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDestroy Action = "destroy"
	// ActionManage stands for every action.
	ActionManage Action = "manage"
)

var Actions = []Action{
	ActionRead,
	ActionCreate,
	ActionSubmit,
	ActionApprove,
	ActionReject,
	ActionDestroy,
	ActionManage,
}

type Kind string

const (
	KindRequest Kind = "request"
	KindComment Kind = "comment"
)

var Kinds = []Kind{KindRequest, KindComment}

// Object is the casbin object a kind is guarded by at the route level.
func (k Kind) Object() string {
	switch k {
	case KindRequest:
		return "approvals.requests"
	case KindComment:
		return "approvals.comments"
	default:
		return "approvals." + string(k)
	}
}
