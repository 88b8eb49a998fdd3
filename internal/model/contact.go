package model

import "strings"

// ChatRoomMarker 群聊 username 中包含的标记
const ChatRoomMarker = "@chatroom"

type Kind int

const (
	KindSingle Kind = iota
	KindChatRoom
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindChatRoom:
		return "chatroom"
	case KindOther:
		return "other"
	default:
		return "single"
	}
}

type Contact struct {
	UserName string `json:"userName"`
	Alias    string `json:"alias"`
	Remark   string `json:"remark"`
	NickName string `json:"nickName"`
	IsFriend bool   `json:"isFriend"`
}

// Kind is derived from the username suffix, never stored.
func (c *Contact) Kind() Kind {
	return KindOf(c.UserName)
}

func (c *Contact) IsChatRoom() bool {
	return c.Kind() == KindChatRoom
}

func (c *Contact) DisplayName() string {
	switch {
	case c.Remark != "":
		return c.Remark
	case c.NickName != "":
		return c.NickName
	}
	return c.UserName
}

func KindOf(userName string) Kind {
	switch {
	case strings.Contains(userName, ChatRoomMarker):
		return KindChatRoom
	case strings.HasPrefix(userName, "gh_"), strings.HasSuffix(userName, "@openim"):
		// 公众号 / 企业微信
		return KindOther
	}
	return KindSingle
}
