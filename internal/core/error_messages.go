package core

// error_messages.go maps technical errors to messages a portal user can act
// on. Each message carries a code that support staff can look up here.
//
// # Error Codes Reference
//
// Database (DB001-DB099):
//
//	DB001 - Duplicate key               "duplicate key"
//	DB002 - Unique constraint           "unique constraint", "violates unique"
//	DB003 - Connection refused          "connection refused"
//	DB004 - Connection reset            "connection reset"
//	DB005 - Conflicting write           "deadlock", "database is locked"
//	DB006 - Timeout                     "timeout"
//
// Validation (VAL001-VAL099):
//
//	VAL001 - Field out of range         "must be at most", "must be at least"
//	VAL002 - Required field             "is required"
//	VAL003 - Customer mismatch          "you are currently viewing"
//
// Workbook (FILE001-FILE099):
//
//	FILE001 - File too large            "request body too large", "file too large"
//	FILE002 - Not a workbook            "not a readable excel workbook", "not an excel workbook"
//	FILE003 - No file                   "no file uploaded"
//	FILE004 - No data rows              "has no data rows", "no valid"
//
// Upload (UPL001-UPL099):
//
//	UPL001 - System busy                "too many concurrent uploads"
//	UPL002 - Request cancelled          "context canceled"
//	UPL003 - Request timeout            "context deadline exceeded"
//
// Authentication (AUTH001-AUTH099):
//
//	AUTH001 - Bad credentials           "invalid credentials", "old password is incorrect"
//	AUTH002 - Pending approval          "pending approval", "not approved"
//	AUTH003 - Account rejected          "has been rejected"
//	AUTH004 - Reset token               "reset token"
//	AUTH005 - Not signed in             "authentication required"
//	AUTH006 - Forbidden                 "not allowed"
//
// Rate limiting (RATE001-RATE099):
//
//	RATE001 - Rate limited              "rate limit"
//
// Anything else maps to ERR000. Patterns are matched case-insensitively with
// strings.Contains and the first match wins, so specific patterns go first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database
	{"duplicate key", UserMessage{
		Message: "A record with this ID already exists",
		Action:  "Check the workbook for duplicate rows",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Use a different value",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Use a different value",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB003",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB004",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with a conflicting update",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"database is locked", UserMessage{
		Message: "Database was busy with a conflicting update",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller workbook or try again later",
		Code:    "DB006",
	}},

	// Validation
	{"must be at most", UserMessage{
		Message: "A value is out of range",
		Action:  "Check numbers and text lengths against the allowed limits",
		Code:    "VAL001",
	}},
	{"must be at least", UserMessage{
		Message: "A value is out of range",
		Action:  "Check numbers and text lengths against the allowed limits",
		Code:    "VAL001",
	}},
	{"is required", UserMessage{
		Message: "A required field is empty",
		Action:  "Fill in every required field",
		Code:    "VAL002",
	}},
	{"you are currently viewing", UserMessage{
		Message: "The workbook belongs to a different customer",
		Action:  "Select the matching customer before uploading",
		Code:    "VAL003",
	}},

	// Workbook
	{"request body too large", UserMessage{
		Message: "Workbook exceeds the maximum size limit",
		Action:  "Remove unused sheets or split the workbook",
		Code:    "FILE001",
	}},
	{"file too large", UserMessage{
		Message: "Workbook exceeds the maximum size limit",
		Action:  "Remove unused sheets or split the workbook",
		Code:    "FILE001",
	}},
	{"not a readable excel workbook", UserMessage{
		Message: "The file is not an Excel workbook",
		Action:  "Save the file as .xlsx and upload it again",
		Code:    "FILE002",
	}},
	{"not an excel workbook", UserMessage{
		Message: "The file is not an Excel workbook",
		Action:  "Save the file as .xlsx and upload it again",
		Code:    "FILE002",
	}},
	{"no file uploaded", UserMessage{
		Message: "No file was selected",
		Action:  "Please select an Excel file to upload",
		Code:    "FILE003",
	}},
	{"has no data rows", UserMessage{
		Message: "The workbook has no data rows",
		Action:  "Add rows below the header row",
		Code:    "FILE004",
	}},
	{"no valid", UserMessage{
		Message: "The workbook has no data rows",
		Action:  "Add rows below the header row",
		Code:    "FILE004",
	}},

	// Upload
	{"too many concurrent uploads", UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL001",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL002",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller workbook or check your connection",
		Code:    "UPL003",
	}},

	// Authentication
	{"invalid credentials", UserMessage{
		Message: "Email or password is incorrect",
		Action:  "Check your credentials or reset your password",
		Code:    "AUTH001",
	}},
	{"old password is incorrect", UserMessage{
		Message: "Email or password is incorrect",
		Action:  "Check your credentials or reset your password",
		Code:    "AUTH001",
	}},
	{"pending approval", UserMessage{
		Message: "Your account is waiting for approval",
		Action:  "An administrator must approve the account first",
		Code:    "AUTH002",
	}},
	{"not approved", UserMessage{
		Message: "Your account is waiting for approval",
		Action:  "An administrator must approve the account first",
		Code:    "AUTH002",
	}},
	{"has been rejected", UserMessage{
		Message: "Your account has been rejected",
		Action:  "Contact an administrator",
		Code:    "AUTH003",
	}},
	{"reset token", UserMessage{
		Message: "The reset token is invalid or expired",
		Action:  "Generate a new reset token",
		Code:    "AUTH004",
	}},
	{"authentication required", UserMessage{
		Message: "You are not signed in",
		Action:  "Sign in and try again",
		Code:    "AUTH005",
	}},
	{"not allowed", UserMessage{
		Message: "You do not have access to this resource",
		Action:  "Ask an administrator for access",
		Code:    "AUTH006",
	}},

	// Rate limiting
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: X). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
