package redis

import "fmt"

// SessionKey 统一约定会话键名（购物车 + flash 消息都挂在会话上）。
func SessionKey(sessionID string) string {
	return fmt.Sprintf("pos:session:%s", sessionID)
}
