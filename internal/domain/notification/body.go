// internal/domain/notification/body.go
package notification

import (
	"strings"
)

const (
	// AlertTitle is the title of every daily reminder alert.
	AlertTitle = "할 일 알림"
	// DefaultBody is used when there are no tasks to list.
	DefaultBody = "매일의 결심이 소중합니다."

	moreTasksSuffix = "그리고 다른 할 일"
	maxListedTitles = 2
	bullet          = "• "
)

// BuildBody assembles the alert body from task titles. Blank titles are
// skipped. With three or more titles only the first two are listed, followed
// by a line saying there is more.
func BuildBody(titles []string) string {
	decorated := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		decorated = append(decorated, bullet+t)
	}

	switch {
	case len(decorated) == 0:
		return DefaultBody
	case len(decorated) > maxListedTitles:
		return strings.Join(decorated[:maxListedTitles], "\n") + "\n" + moreTasksSuffix
	default:
		return strings.Join(decorated, "\n")
	}
}
