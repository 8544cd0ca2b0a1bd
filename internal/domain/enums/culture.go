package enums

type Culture string

const (
	CultureBrahmin Culture = "Brahmin"
	CultureChhetri Culture = "Chhetri"
	CultureNewar   Culture = "Newar"
	CultureRai     Culture = "Rai"
	CultureMagar   Culture = "Magar"
	CultureGurung  Culture = "Gurung"
)

func IsValidCulture(value string) bool {
	switch Culture(value) {
	case CultureBrahmin, CultureChhetri, CultureNewar, CultureRai, CultureMagar, CultureGurung:
		return true
	default:
		return false
	}
}
