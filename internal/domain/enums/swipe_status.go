package enums

type SwipeStatus string

const (
	SwipeStatusLike    SwipeStatus = "like"
	SwipeStatusDislike SwipeStatus = "dislike"
)

func IsValidSwipeStatus(value string) bool {
	switch SwipeStatus(value) {
	case SwipeStatusLike, SwipeStatusDislike:
		return true
	default:
		return false
	}
}
