package models

import (
	"regexp"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
)

var txHashPattern = regexp.MustCompile(`^[A-Fa-f0-9]{64}$`)

// IsClassicAddress reports whether s is a classic r-address with a valid
// checksum.
func IsClassicAddress(s string) bool {
	return addresscodec.IsValidClassicAddress(s)
}

func IsTxHash(s string) bool {
	return txHashPattern.MatchString(s)
}
