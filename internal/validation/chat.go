package validation

// SendMessageInput 发送客服消息；conversationId 为空时开启新会话
type SendMessageInput struct {
	ConversationID string `json:"conversationId,omitempty" validate:"omitempty,objectid"`
	Content        string `json:"content" validate:"required,min=1,max=2000,safetext"`
}
