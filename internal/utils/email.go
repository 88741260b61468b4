package utils

import (
	"net/mail"
	"strings"
)

// ValidEmail accepts a bare address with a dotted domain, e.g. a@b.com
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}
