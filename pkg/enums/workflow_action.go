package enums

import "fmt"

// WorkflowAction is a user-requested transition of the product workflow.
type WorkflowAction string

const (
	WorkflowActionRequestApproval WorkflowAction = "request_approval"
	WorkflowActionPublish         WorkflowAction = "publish"
	WorkflowActionReject          WorkflowAction = "reject"
	WorkflowActionUnpublish       WorkflowAction = "unpublish"
	WorkflowActionReturnToEdit    WorkflowAction = "return_to_edit"
)

var validWorkflowActions = []WorkflowAction{
	WorkflowActionRequestApproval,
	WorkflowActionPublish,
	WorkflowActionReject,
	WorkflowActionUnpublish,
	WorkflowActionReturnToEdit,
}

// String implements fmt.Stringer.
func (a WorkflowAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known WorkflowAction.
func (a WorkflowAction) IsValid() bool {
	for _, candidate := range validWorkflowActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// WorkflowActions returns every action in a stable order.
func WorkflowActions() []WorkflowAction {
	return append([]WorkflowAction(nil), validWorkflowActions...)
}

// ParseWorkflowAction converts raw input into a WorkflowAction.
func ParseWorkflowAction(value string) (WorkflowAction, error) {
	for _, candidate := range validWorkflowActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid workflow action %q", value)
}

// PendingAction marks the single mutating operation in flight for a product.
type PendingAction string

const (
	PendingNone            PendingAction = ""
	PendingSave            PendingAction = "save"
	PendingRequestApproval PendingAction = PendingAction(WorkflowActionRequestApproval)
	PendingPublish         PendingAction = PendingAction(WorkflowActionPublish)
	PendingReject          PendingAction = PendingAction(WorkflowActionReject)
	PendingUnpublish       PendingAction = PendingAction(WorkflowActionUnpublish)
	PendingReturnToEdit    PendingAction = PendingAction(WorkflowActionReturnToEdit)
)

// String implements fmt.Stringer.
func (p PendingAction) String() string {
	if p == PendingNone {
		return "none"
	}
	return string(p)
}

// PendingFor maps a workflow action to its pending-action token.
func PendingFor(action WorkflowAction) PendingAction {
	return PendingAction(action)
}
