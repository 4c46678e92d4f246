package auth

import (
	"bloodaid/pkg/types"
)

// Action names a guarded operation. The permission table below is the
// whole role matrix; roles are flat, nothing is inherited.
type Action string

const (
	ActionListUsers          Action = "users.list"
	ActionChangeUserRole     Action = "users.change_role"
	ActionChangeUserStatus   Action = "users.change_status"
	ActionCreateRequest      Action = "requests.create"
	ActionListAllRequests    Action = "requests.list_all"
	ActionCreateBlog         Action = "blogs.create"
	ActionListFunds          Action = "funds.list"
	ActionCreateFund         Action = "funds.create"
	ActionStartPayment       Action = "payments.start"
	ActionClaimRequest       Action = "requests.claim"
)

var permissions = map[types.Role]map[Action]bool{
	types.RoleDonor: {
		ActionCreateRequest: true,
		ActionClaimRequest:  true,
		ActionCreateFund:    true,
		ActionStartPayment:  true,
	},
	types.RoleVolunteer: {
		ActionCreateRequest:   true,
		ActionClaimRequest:    true,
		ActionCreateFund:      true,
		ActionStartPayment:    true,
		ActionListAllRequests: true,
		ActionCreateBlog:      true,
		ActionListFunds:       true,
	},
	types.RoleAdmin: {
		ActionCreateRequest:    true,
		ActionClaimRequest:     true,
		ActionCreateFund:       true,
		ActionStartPayment:     true,
		ActionListAllRequests:  true,
		ActionCreateBlog:       true,
		ActionListFunds:        true,
		ActionListUsers:        true,
		ActionChangeUserRole:   true,
		ActionChangeUserStatus: true,
	},
}

// Authorize checks the actor's role against the permission table. A
// blocked actor is rejected outright for mutating actions with
// ErrUserBlocked, which callers surface distinctly from a role denial.
func Authorize(actor *types.User, action Action) error {
	if actor == nil {
		return types.ErrUnauthenticated
	}

	if actor.Blocked() && mutating(action) {
		return types.ErrUserBlocked
	}

	if !permissions[actor.Role][action] {
		return types.ErrForbidden
	}

	return nil
}

func mutating(action Action) bool {
	switch action {
	case ActionCreateRequest, ActionClaimRequest, ActionCreateFund, ActionStartPayment, ActionCreateBlog:
		return true
	}
	return false
}

// CanMutateRequest reports whether the actor may update or delete the
// given request: its owner or an admin.
func CanMutateRequest(actor *types.User, request *types.DonationRequest) bool {
	if actor == nil || request == nil {
		return false
	}
	return actor.Role == types.RoleAdmin || actor.Email == request.RequesterEmail
}

// CanChangeRequestStatus reports whether the actor may move the request
// through its lifecycle: owner, admin, or volunteer.
func CanChangeRequestStatus(actor *types.User, request *types.DonationRequest) bool {
	if actor == nil || request == nil {
		return false
	}
	if actor.Role == types.RoleAdmin || actor.Role == types.RoleVolunteer {
		return true
	}
	return actor.Email == request.RequesterEmail
}
