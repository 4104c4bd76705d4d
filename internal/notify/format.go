package notify

import (
	"fmt"
	"strings"

	"postkeeper/internal/model"
)

// digestLimit caps how many titles the notification lists.
const digestLimit = 5

// FormatDigest formats the new-posts notification message.
func FormatDigest(posts []model.Post) string {
	var b strings.Builder

	if len(posts) == 1 {
		b.WriteString("1 new post\n")
	} else {
		fmt.Fprintf(&b, "%d new posts\n", len(posts))
	}

	shown := posts
	if len(shown) > digestLimit {
		shown = shown[:digestLimit]
	}
	for _, p := range shown {
		fmt.Fprintf(&b, "\n%s\n%s\n", p.Title, p.Link)
	}
	if rest := len(posts) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n...and %d more\n", rest)
	}
	return b.String()
}
