package utils

import "strconv"

// MaskPhoneNumber masks a phone number for secure logging
// Keeps first 3 and last 4 characters visible, masks the rest
//
// Examples:
//   - "+1234567890" -> "+12****7890"
//   - "+123456" -> "****"
func MaskPhoneNumber(phone string) string {
	if len(phone) <= 6 {
		return "****"
	}

	return phone[:3] + "****" + phone[len(phone)-4:]
}

// MaskSecret hides a token or password in logs. Only the length survives, so
// two log lines can still be told apart when a token was replaced.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}

	return secret[:4] + "****(" + strconv.Itoa(len(secret)) + ")"
}
