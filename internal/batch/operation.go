package batch

import "strings"

const (
	changesToRemoteUsageMessageConstant = "--checkout and --commit are required!"
)

// Operation identifies the bulk action applied to every repository.
type Operation int

// Operations in flag precedence order after OperationNone.
const (
	OperationNone Operation = iota
	OperationList
	OperationStatus
	OperationStatusRemote
	OperationAdd
	OperationPull
	OperationPush
	OperationFetchAll
	OperationChangesToRemote
	OperationCheckout
	OperationCommit
)

var operationNames = map[Operation]string{
	OperationNone:            "none",
	OperationList:            "list",
	OperationStatus:          "status",
	OperationStatusRemote:    "status-remote",
	OperationAdd:             "add",
	OperationPull:            "pull",
	OperationPush:            "push",
	OperationFetchAll:        "fetch-all",
	OperationChangesToRemote: "changes_to_remote",
	OperationCheckout:        "checkout",
	OperationCommit:          "commit",
}

// String returns the command-line spelling of the operation.
func (operation Operation) String() string {
	if name, known := operationNames[operation]; known {
		return name
	}
	return operationNames[OperationNone]
}

// Selection records which operation flags were supplied.
// Checkout and commit count as supplied when their values are not blank.
type Selection struct {
	List            bool
	Status          bool
	StatusRemote    bool
	Add             bool
	Pull            bool
	Push            bool
	FetchAll        bool
	ChangesToRemote bool
	CheckoutBranch  string
	CommitMessage   string
}

// Invocation is a selected operation together with its parameters.
type Invocation struct {
	Operation     Operation
	BranchName    string
	CommitMessage string
}

// UsageError reports a flag combination that cannot run.
type UsageError struct {
	Message string
}

// Error returns the usage message.
func (usageError UsageError) Error() string {
	return usageError.Message
}

// SelectOperation returns the first supplied operation in precedence order; every later flag is ignored.
// changes_to_remote requires both a checkout branch and a commit message.
func SelectOperation(selection Selection) (Operation, error) {
	checkoutRequested := len(strings.TrimSpace(selection.CheckoutBranch)) > 0
	commitRequested := len(strings.TrimSpace(selection.CommitMessage)) > 0

	precedence := []struct {
		requested bool
		operation Operation
	}{
		{requested: selection.List, operation: OperationList},
		{requested: selection.Status, operation: OperationStatus},
		{requested: selection.StatusRemote, operation: OperationStatusRemote},
		{requested: selection.Add, operation: OperationAdd},
		{requested: selection.Pull, operation: OperationPull},
		{requested: selection.Push, operation: OperationPush},
		{requested: selection.FetchAll, operation: OperationFetchAll},
		{requested: selection.ChangesToRemote, operation: OperationChangesToRemote},
		{requested: checkoutRequested, operation: OperationCheckout},
		{requested: commitRequested, operation: OperationCommit},
	}

	for _, candidate := range precedence {
		if !candidate.requested {
			continue
		}
		if candidate.operation == OperationChangesToRemote && (!checkoutRequested || !commitRequested) {
			return OperationNone, UsageError{Message: changesToRemoteUsageMessageConstant}
		}
		return candidate.operation, nil
	}
	return OperationNone, nil
}

// Plan selects the operation and binds the branch and message it needs.
func Plan(selection Selection) (Invocation, error) {
	operation, selectionError := SelectOperation(selection)
	if selectionError != nil {
		return Invocation{}, selectionError
	}
	return Invocation{
		Operation:     operation,
		BranchName:    strings.TrimSpace(selection.CheckoutBranch),
		CommitMessage: selection.CommitMessage,
	}, nil
}
