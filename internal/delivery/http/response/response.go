package response

import (
	"strings"
)

// joinAnalysts renders analyst names for speech: "A", "A and B", "A, B and C".
func joinAnalysts(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func byline(title string, analysts []string) string {
	if len(analysts) == 0 {
		return title
	}
	return title + " by " + joinAnalysts(analysts)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
