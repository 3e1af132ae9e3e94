package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/validation"
)

// ChatService 在线客服
type ChatService struct {
	client *apiclient.Client
}

// NewChatService 创建客服服务
func NewChatService(client *apiclient.Client) *ChatService {
	return &ChatService{client: client}
}

// ListConversations 我的会话
func (s *ChatService) ListConversations(ctx context.Context) ([]Conversation, error) {
	ctx = withOp(ctx, "chat.conversations")
	return apiclient.Do[[]Conversation](ctx, s.client, http.MethodGet, "/chat/conversations", nil)
}

// Messages 会话消息分页
func (s *ChatService) Messages(ctx context.Context, conversationID string, page validation.PageInput) (apiclient.Page[ChatMessage], error) {
	ctx = withOp(ctx, "chat.messages")
	if err := validation.ValidateID(ctx, "conversationId", conversationID); err != nil {
		return apiclient.Page[ChatMessage]{}, err
	}
	page, err := validation.ParseContext(ctx, page)
	if err != nil {
		return apiclient.Page[ChatMessage]{}, err
	}
	return apiclient.DoList[ChatMessage](ctx, s.client, http.MethodGet,
		"/chat/conversations/"+conversationID+"/messages", nil, apiclient.WithQuery(page.Query()))
}

// SendMessage 发送消息，conversationId 为空时开启新会话
func (s *ChatService) SendMessage(ctx context.Context, in validation.SendMessageInput) (ChatMessage, error) {
	ctx = withOp(ctx, "chat.send")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return ChatMessage{}, err
	}
	return apiclient.Do[ChatMessage](ctx, s.client, http.MethodPost, "/chat/messages", in)
}
