package model

type ChatRoom struct {
	Name     string         `json:"name"`
	Owner    string         `json:"owner"`
	Remark   string         `json:"remark"`
	NickName string         `json:"nickName"`
	Users    []ChatRoomUser `json:"users"`
}

type ChatRoomUser struct {
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
}

// UserNames lists member ids in room order.
func (c *ChatRoom) UserNames() []string {
	ids := make([]string, 0, len(c.Users))
	for _, u := range c.Users {
		if u.UserName != "" {
			ids = append(ids, u.UserName)
		}
	}
	return ids
}
