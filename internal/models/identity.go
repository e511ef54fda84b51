package models

// Identity is the authenticated account invoking a workflow, supplied by the
// identity collaborator at the API boundary.
type Identity struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}
