package dialogue

import "SupportDesk/pkg/response"

var (
	ErrEmptyMessage         = response.NewError(400, "message is required")
	ErrInvalidTicketMeta    = response.NewError(400, "invalid ticket metadata")
	ErrConversationNotFound = response.NewError(404, "conversation not found")
	ErrMappingNotFound      = response.NewError(404, "intent mapping not found")
	ErrInvalidIntentLabel   = response.NewError(400, "unknown intent label")
	ErrSubmissionFailed     = response.NewError(502, "failed to store the submission, please resend your last message")
	ErrExportFailed         = response.NewError(500, "failed to export submissions")
	ErrNoSubmissions        = response.NewError(404, "no submissions recorded for that intent")
)
