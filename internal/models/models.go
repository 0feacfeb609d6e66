package models

import "time"

// ActiveVC is a voice or video chat session the bot currently takes part in.
type ActiveVC struct {
	ChatID   int64     `json:"chat_id"`
	JoinTime time.Time `json:"join_time"`
	VCType   string    `json:"vc_type"`
}

// AuthDetails is the free-form payload stored for an authorized user.
type AuthDetails map[string]interface{}

// AuthUser is one authorized user of a chat.
type AuthUser struct {
	ChatID  int64       `json:"chat_id"`
	UserID  int64       `json:"user_id"`
	Details AuthDetails `json:"details"`
}

func (d AuthDetails) GetInt64(key string) int64 {
	if d == nil {
		return 0
	}
	val, ok := d[key]
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}

func (d AuthDetails) GetTime(key string) time.Time {
	if d == nil {
		return time.Time{}
	}
	val, ok := d[key]
	if !ok {
		return time.Time{}
	}
	switch v := val.(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

func (d AuthDetails) GetString(key string) string {
	if d == nil {
		return ""
	}
	if str, ok := d[key].(string); ok {
		return str
	}
	return ""
}

// Stats is a point-in-time summary of what the store holds.
type Stats struct {
	Backend          string          `json:"backend"`
	Users            int64           `json:"users"`
	Chats            int64           `json:"chats"`
	ActiveVoiceChats int             `json:"active_voice_chats"`
	Autoend          bool            `json:"autoend"`
	Sets             map[SetName]int `json:"sets"`
}
