package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthlink-be/internal/dto"
	"healthlink-be/internal/entity"
	"healthlink-be/internal/pkg/logger"
	"healthlink-be/internal/repository/contract"
	"healthlink-be/internal/repository/specification"
	"healthlink-be/internal/repository/unitofwork"
	"healthlink-be/pkg/events"
	pktNats "healthlink-be/pkg/nats"

	"github.com/google/uuid"
)

type IChatService interface {
	SendMessage(ctx context.Context, senderId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	HandleSendMessage(ctx context.Context, senderId uuid.UUID, payload []byte) (*dto.MessageResponse, error)
	GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
	GetMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, limit, offset int) ([]*dto.MessageResponse, error)
	GetFile(ctx context.Context, userId uuid.UUID, fileId uuid.UUID) (*dto.FileDownloadResponse, error)
}

type chatService struct {
	uowFactory         unitofwork.RepositoryFactory
	publisherService   IPublisherService
	eventPublisher     *pktNats.Publisher
	userDirectory      IUserDirectory
	logger             logger.ILogger
	maxAttachmentBytes int64
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	userDirectory IUserDirectory,
	log logger.ILogger,
	maxAttachmentBytes int64,
) IChatService {
	return &chatService{
		uowFactory:         uowFactory,
		publisherService:   publisherService,
		eventPublisher:     eventPublisher,
		userDirectory:      userDirectory,
		logger:             log,
		maxAttachmentBytes: maxAttachmentBytes,
	}
}

// HandleSendMessage adapts raw websocket frame payloads onto SendMessage.
func (s *chatService) HandleSendMessage(ctx context.Context, senderId uuid.UUID, payload []byte) (*dto.MessageResponse, error) {
	var req dto.SendMessageRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", ErrInvalidRequest)
	}
	return s.SendMessage(ctx, senderId, &req)
}

// SendMessage validates the request, resolves the pair's conversation,
// persists the message with its attachments in one transaction and enqueues
// the real-time push. Persistence success is the operation's success; the
// push is fire-and-forget.
func (s *chatService) SendMessage(ctx context.Context, senderId uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if senderId == uuid.Nil || req.ReceiverId == uuid.Nil || senderId == req.ReceiverId {
		return nil, ErrInvalidRequest
	}

	text := normalizeText(req.Text)
	if text == nil && len(req.Attachments) == 0 {
		return nil, ErrInvalidRequest
	}

	for _, attachment := range req.Attachments {
		if attachment.MimeType == "" || len(attachment.Content) == 0 {
			return nil, ErrInvalidRequest
		}
		if int64(len(attachment.Content)) > s.maxAttachmentBytes {
			return nil, ErrAttachmentTooLarge
		}
	}

	if s.userDirectory != nil {
		exists, derr := s.userDirectory.Exists(ctx, req.ReceiverId)
		if derr != nil {
			return nil, derr
		}
		if !exists {
			return nil, ErrReceiverNotFound
		}
	}

	conversation, err := s.getOrCreateConversation(ctx, []uuid.UUID{senderId, req.ReceiverId})
	if err != nil {
		return nil, err
	}

	message, err := s.createMessage(ctx, conversation.Id, senderId, req.ReceiverId, text, req.Attachments)
	if err != nil {
		return nil, err
	}

	res := messageToResponse(message)

	// Durable write done; everything below is best-effort notification and
	// must never fail the send.
	if eventPayload, merr := json.Marshal(dto.MessageCreatedEvent{ReceiverId: req.ReceiverId, Message: *res}); merr == nil {
		if perr := s.publisherService.Publish(ctx, eventPayload); perr != nil {
			s.logger.Warn("ChatService", "Failed to enqueue delivery", map[string]interface{}{"message_id": message.Id, "error": perr.Error()})
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewBaseEvent("MESSAGE_SENT", map[string]interface{}{
			"message_id":      message.Id,
			"conversation_id": message.ConversationId,
			"sender_id":       senderId,
			"receiver_id":     req.ReceiverId,
		})
		if perr := s.eventPublisher.Publish(ctx, evt); perr != nil {
			s.logger.Warn("ChatService", "Failed to publish MESSAGE_SENT event", map[string]interface{}{"error": perr.Error()})
		}
	}

	return res, nil
}

// getOrCreateConversation resolves the conversation for a participant set:
// find by the canonical members key, create on miss, and on a lost creation
// race re-fetch the winner instead of surfacing the conflict.
func (s *chatService) getOrCreateConversation(ctx context.Context, participantIds []uuid.UUID) (*entity.Conversation, error) {
	distinct := entity.DistinctParticipants(participantIds)
	if len(distinct) < 2 {
		return nil, ErrInvalidParticipantSet
	}
	key := entity.MembersKey(distinct)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByMembersKey{MembersKey: key})
	if err != nil {
		return nil, err
	}
	if conversation != nil {
		return conversation, nil
	}

	created, err := s.createConversation(ctx, key, distinct)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, contract.ErrConversationExists) {
		return nil, err
	}

	// Lost the race: another sender created the conversation between our
	// lookup and insert. The unique members key guarantees a single winner.
	existing, ferr := uow.ConversationRepository().FindOne(ctx, specification.ByMembersKey{MembersKey: key})
	if ferr != nil {
		return nil, ferr
	}
	if existing == nil {
		return nil, err
	}
	return existing, nil
}

func (s *chatService) createConversation(ctx context.Context, membersKey string, memberIds []uuid.UUID) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	conversation := entity.Conversation{
		Id:         uuid.New(),
		MembersKey: membersKey,
		CreatedAt:  now,
	}
	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, err
	}

	members := make([]*entity.ConversationMember, len(memberIds))
	for i, id := range memberIds {
		members[i] = &entity.ConversationMember{
			UserId:         id,
			ConversationId: conversation.Id,
			CreatedAt:      now,
		}
	}
	if err := uow.ConversationRepository().CreateMembers(ctx, members); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// createMessage persists the message, its files and their association rows as
// one transaction. Any failure rolls the whole write back.
func (s *chatService) createMessage(ctx context.Context, conversationId, senderId, receiverId uuid.UUID, text *string, attachments []dto.AttachmentInput) (*entity.Message, error) {
	// Defensive re-check before the transaction starts.
	if text == nil && len(attachments) == 0 {
		return nil, ErrEmptyMessageContent
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	// Generated up front so association rows can reference the message.
	messageId := uuid.New()

	attachmentViews := make([]*entity.Attachment, 0, len(attachments))
	for _, in := range attachments {
		file := entity.File{
			Id:        uuid.New(),
			MimeType:  in.MimeType,
			FileName:  in.FileName,
			SizeBytes: int64(len(in.Content)),
			Content:   in.Content,
			CreatedAt: now,
		}
		if err := uow.FileRepository().Create(ctx, &file); err != nil {
			return nil, err
		}

		association := entity.FileAssociation{
			Id:         uuid.New(),
			FileId:     file.Id,
			TargetKind: entity.AssociationTargetMessage,
			TargetId:   messageId,
			CreatedAt:  now,
		}
		if err := uow.FileRepository().CreateAssociation(ctx, &association); err != nil {
			return nil, err
		}

		attachmentViews = append(attachmentViews, &entity.Attachment{
			FileId:    file.Id,
			MimeType:  file.MimeType,
			FileName:  file.FileName,
			SizeBytes: file.SizeBytes,
		})
	}

	message := entity.Message{
		Id:             messageId,
		ConversationId: conversationId,
		SenderId:       senderId,
		ReceiverId:     receiverId,
		Text:           text,
		Attachments:    attachmentViews,
		CreatedAt:      now,
	}
	if err := uow.MessageRepository().Create(ctx, &message); err != nil {
		return nil, err
	}

	if err := uow.ConversationRepository().Touch(ctx, conversationId); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &message, nil
}

func (s *chatService) GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAllByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		members, err := uow.ConversationRepository().FindMembers(ctx, conversation.Id)
		if err != nil {
			return nil, err
		}
		memberIds := make([]uuid.UUID, 0, len(members))
		for _, member := range members {
			memberIds = append(memberIds, member.UserId)
		}
		response = append(response, &dto.ConversationResponse{
			Id:        conversation.Id,
			MemberIds: memberIds,
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		})
	}

	return response, nil
}

func (s *chatService) GetMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID, limit, offset int) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	members, err := uow.ConversationRepository().FindMembers(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	if !containsMember(members, userId) {
		return nil, ErrAccessDenied
	}

	specs := []specification.Specification{
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at"},
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})
	}

	messages, err := uow.MessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	if err := s.hydrateAttachments(ctx, uow, messages); err != nil {
		return nil, err
	}

	response := make([]*dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		response = append(response, messageToResponse(message))
	}
	return response, nil
}

func (s *chatService) GetFile(ctx context.Context, userId uuid.UUID, fileId uuid.UUID) (*dto.FileDownloadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.FileRepository().FindOne(ctx, specification.ByID{ID: fileId})
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrFileNotFound
	}

	associations, err := uow.FileRepository().FindAssociationsByFileId(ctx, fileId)
	if err != nil {
		return nil, err
	}

	// The requester must be party to the message this file belongs to.
	allowed := false
	for _, association := range associations {
		if association.TargetKind != entity.AssociationTargetMessage {
			continue
		}
		message, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: association.TargetId})
		if err != nil {
			return nil, err
		}
		if message != nil && (message.SenderId == userId || message.ReceiverId == userId) {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	return &dto.FileDownloadResponse{
		Id:       file.Id,
		MimeType: file.MimeType,
		FileName: file.FileName,
		Content:  file.Content,
	}, nil
}

// hydrateAttachments loads attachment metadata for a batch of messages.
func (s *chatService) hydrateAttachments(ctx context.Context, uow unitofwork.UnitOfWork, messages []*entity.Message) error {
	if len(messages) == 0 {
		return nil
	}

	messageIds := make([]uuid.UUID, 0, len(messages))
	byId := make(map[uuid.UUID]*entity.Message, len(messages))
	for _, message := range messages {
		messageIds = append(messageIds, message.Id)
		byId[message.Id] = message
	}

	associations, err := uow.FileRepository().FindAssociationsByTarget(ctx, entity.AssociationTargetMessage, messageIds)
	if err != nil {
		return err
	}

	for _, association := range associations {
		message, ok := byId[association.TargetId]
		if !ok || association.File == nil {
			continue
		}
		message.Attachments = append(message.Attachments, &entity.Attachment{
			FileId:    association.FileId,
			MimeType:  association.File.MimeType,
			FileName:  association.File.FileName,
			SizeBytes: association.File.SizeBytes,
		})
	}
	return nil
}

func normalizeText(text *string) *string {
	if text == nil || *text == "" {
		return nil
	}
	return text
}

func containsMember(members []*entity.ConversationMember, userId uuid.UUID) bool {
	for _, member := range members {
		if member.UserId == userId {
			return true
		}
	}
	return false
}

func messageToResponse(message *entity.Message) *dto.MessageResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(message.Attachments))
	for _, attachment := range message.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			FileId:    attachment.FileId,
			MimeType:  attachment.MimeType,
			FileName:  attachment.FileName,
			SizeBytes: attachment.SizeBytes,
		})
	}
	return &dto.MessageResponse{
		Id:             message.Id,
		ConversationId: message.ConversationId,
		SenderId:       message.SenderId,
		ReceiverId:     message.ReceiverId,
		Text:           message.Text,
		Attachments:    attachments,
		CreatedAt:      message.CreatedAt,
	}
}
