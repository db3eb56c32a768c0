package utils

import (
	"crypto/rand"
)

// TicketCodeLength is the length of door-entry codes. 36^16 keeps the
// collision probability negligible, but callers still re-check
// uniqueness against the store before committing.
const TicketCodeLength = 16

// ticketCodeCharset is the alphabet for ticket codes. Uppercase only:
// codes are compared case-insensitively and stored uppercase.
const ticketCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTicketCode returns a random code of the given length drawn
// from [A-Z0-9].
func GenerateTicketCode(length int) (string, error) {
	// Make a slice of length random bytes.
	code := make([]byte, length)

	// Read into the slice.
	if _, err := rand.Read(code); err != nil {
		return "", err
	}

	// Map bytes onto the charset.
	for i := 0; i < length; i++ {
		code[i] = ticketCodeCharset[int(code[i])%len(ticketCodeCharset)]
	}

	return string(code), nil
}
