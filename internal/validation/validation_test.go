package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("amine.b@example.dz"))
	assert.True(t, ValidEmail("a+tag@mail.co"))
	assert.False(t, ValidEmail("no-at-sign"))
	assert.False(t, ValidEmail("user@"))
	assert.False(t, ValidEmail("@domain.com"))
}

func TestValidatePassenger(t *testing.T) {
	valid := models.Passenger{
		Name:           "Amine Bouchareb",
		PassportNumber: "P1234567",
		DateOfBirth:    "1990-04-12",
		Email:          "amine@example.dz",
		Phone:          "+213 555 01 02 03",
	}
	assert.NoError(t, ValidatePassenger(valid))

	noName := valid
	noName.Name = "  "
	assert.Error(t, ValidatePassenger(noName))

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Error(t, ValidatePassenger(badEmail))

	noPassport := valid
	noPassport.PassportNumber = ""
	assert.Error(t, ValidatePassenger(noPassport))
}

func TestValidCardNumber(t *testing.T) {
	assert.True(t, ValidCardNumber("4111111111111111"))
	assert.True(t, ValidCardNumber("4111 1111 1111 1111"))
	assert.False(t, ValidCardNumber("411111"))
	assert.False(t, ValidCardNumber("4111-1111-1111-1111"))
}

func TestValidCVV(t *testing.T) {
	assert.True(t, ValidCVV("123"))
	assert.False(t, ValidCVV("12"))
	assert.False(t, ValidCVV("1234"))
	assert.False(t, ValidCVV("12a"))
}

func TestValidExpiry(t *testing.T) {
	// December 2025
	now := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

	// A card expiring in the current month/year is still valid.
	assert.True(t, ValidExpiry("12/25", now))
	assert.True(t, ValidExpiry("01/26", now))
	assert.False(t, ValidExpiry("11/25", now))
	assert.False(t, ValidExpiry("12/24", now))

	assert.False(t, ValidExpiry("13/25", now))
	assert.False(t, ValidExpiry("0/25", now))
	assert.False(t, ValidExpiry("1225", now))
	assert.False(t, ValidExpiry("12/2025", now))
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "************1111", MaskCard("4111111111111111"))
	assert.Equal(t, "************1111", MaskCard("4111 1111 1111 1111"))
}
