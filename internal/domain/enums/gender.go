package enums

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// InterestedIn is the gender preference used by the discovery filter.
// "Everyone" disables the gender constraint.
type InterestedIn string

const (
	InterestedInMale     InterestedIn = "Male"
	InterestedInFemale   InterestedIn = "Female"
	InterestedInEveryone InterestedIn = "Everyone"
)

func IsValidGender(value string) bool {
	switch Gender(value) {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

func IsValidInterestedIn(value string) bool {
	switch InterestedIn(value) {
	case InterestedInMale, InterestedInFemale, InterestedInEveryone:
		return true
	default:
		return false
	}
}
