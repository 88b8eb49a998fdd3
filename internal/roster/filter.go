package roster

import (
	"strings"

	"github.com/ysy950803/chatroster/internal/model"
)

// Match reports whether c belongs in the chatroom table for keyword.
// Only chatroom contacts are ever shown; the keyword is a case-insensitive
// substring of the nickname, and an empty keyword matches every chatroom.
func Match(c *model.Contact, keyword string) bool {
	if c == nil {
		return false
	}
	return textIncludes(c.NickName, keyword) && strings.Contains(c.UserName, model.ChatRoomMarker)
}

// Filter keeps the matching contacts in roster order.
func Filter(contacts []*model.Contact, keyword string) []*model.Contact {
	filtered := make([]*model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if Match(c, keyword) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func textIncludes(v1, v2 string) bool {
	return strings.Contains(strings.ToLower(v1), strings.ToLower(v2))
}
