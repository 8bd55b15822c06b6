package request_models

// ChangeTierRequest is validated against the closed tier enumeration at the
// boundary; unknown values never reach the entitlement service.
type ChangeTierRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid4"`
	Tier      string `json:"tier" binding:"required"`
	Reason    string `json:"reason" binding:"omitempty,max=200"`
}

type ResetUsageRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid4"`
}
