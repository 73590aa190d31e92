package enums

import "fmt"

// PhotoOwnerKind identifies which entity a profile photo belongs to.
type PhotoOwnerKind string

const (
	PhotoOwnerUser       PhotoOwnerKind = "user"
	PhotoOwnerSisterhood PhotoOwnerKind = "sisterhood"
)

var validPhotoOwnerKinds = []PhotoOwnerKind{
	PhotoOwnerUser,
	PhotoOwnerSisterhood,
}

// String implements fmt.Stringer.
func (k PhotoOwnerKind) String() string {
	return string(k)
}

// IsValid reports whether the value matches a known PhotoOwnerKind.
func (k PhotoOwnerKind) IsValid() bool {
	for _, candidate := range validPhotoOwnerKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePhotoOwnerKind converts raw input into a PhotoOwnerKind.
func ParsePhotoOwnerKind(value string) (PhotoOwnerKind, error) {
	for _, candidate := range validPhotoOwnerKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid photo owner kind %q", value)
}
