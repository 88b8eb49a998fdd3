package model

import "encoding/json"

// Member is a resolved chatroom member.
type Member struct {
	UserName    string `json:"userName"`
	NickName    string `json:"nickName"`
	Alias       string `json:"alias,omitempty"`
	Remark      string `json:"remark,omitempty"`
	DisplayName string `json:"displayName,omitempty"` // 群昵称
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// MemberEntry is one slot of a member list: either a raw placeholder id
// waiting for lookup, or a resolved record.
type MemberEntry struct {
	ID     string
	Member *Member
}

func Placeholder(id string) MemberEntry {
	return MemberEntry{ID: id}
}

func Resolved(m *Member) MemberEntry {
	e := MemberEntry{Member: m}
	if m != nil {
		e.ID = m.UserName
	}
	return e
}

func (e MemberEntry) IsPlaceholder() bool {
	return e.Member == nil
}

// MarshalJSON renders placeholders as bare strings, the shape the web view expects.
func (e MemberEntry) MarshalJSON() ([]byte, error) {
	if e.Member == nil {
		return json.Marshal(e.ID)
	}
	return json.Marshal(e.Member)
}
