package logging

import "strings"

// RedactEmail masks the local part of an address for logs:
// "ann@example.com" becomes "a***@example.com".
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
