package entities

// KYCResultStatus is the outcome of a pipeline invocation. FAILED means the
// pipeline could not run to completion; the stored KYCStatus is untouched.
type KYCResultStatus string

const (
	KYCResultApproved KYCResultStatus = "APPROVED"
	KYCResultRejected KYCResultStatus = "REJECTED"
	KYCResultFailed   KYCResultStatus = "FAILED"
)

// KYCSignals holds the three individual verification signals for auditability
type KYCSignals struct {
	OCRMatch       bool `json:"ocrMatch"`
	FaceMatch      bool `json:"faceMatch"`
	NoRestrictions bool `json:"noPublicRestrictions"`
}

// KYCResult is the structured result of one full pipeline run
type KYCResult struct {
	Status  KYCResultStatus `json:"status"`
	Reason  string          `json:"reason,omitempty"`
	Details *KYCSignals     `json:"details,omitempty"`
}
