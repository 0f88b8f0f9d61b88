// Package validation holds the pure syntactic checks used by the lifecycle
// managers. None of these functions touch storage.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperr "github.com/Walid274gh/SkyBooking-sub001/internal/errors"
	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9 \-]{7,20}$`)
	digits  = regexp.MustCompile(`^[0-9]+$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPhone reports whether s looks like a phone number.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// ValidatePassenger checks that a passenger value object is complete.
func ValidatePassenger(p models.Passenger) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperr.Validation("passenger name is required")
	case strings.TrimSpace(p.PassportNumber) == "":
		return apperr.Validation("passenger passport number is required")
	case strings.TrimSpace(p.DateOfBirth) == "":
		return apperr.Validation("passenger date of birth is required")
	case !ValidEmail(p.Email):
		return apperr.Validation("passenger email %q is invalid", p.Email)
	case !ValidPhone(p.Phone):
		return apperr.Validation("passenger phone %q is invalid", p.Phone)
	}
	return nil
}

// ValidCardNumber checks length and digit content only; issuer verification
// belongs to the bank processor.
func ValidCardNumber(number string) bool {
	n := strings.ReplaceAll(number, " ", "")
	return len(n) >= 13 && len(n) <= 19 && digits.MatchString(n)
}

// ValidCVV requires exactly three digits.
func ValidCVV(cvv string) bool {
	return len(cvv) == 3 && digits.MatchString(cvv)
}

// ValidExpiry parses an MM/YY expiry and compares it against now. A card
// expiring in the current month is still valid.
func ValidExpiry(expiry string, now time.Time) bool {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return false
	}
	year += 2000

	if year != now.Year() {
		return year > now.Year()
	}
	return time.Month(month) >= now.Month()
}

// MaskCard keeps the last four digits of a card number.
func MaskCard(number string) string {
	n := strings.ReplaceAll(number, " ", "")
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
