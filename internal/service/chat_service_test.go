package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"healthlink-be/internal/dto"
	"healthlink-be/internal/entity"
	"healthlink-be/internal/repository/contract"
	"healthlink-be/internal/repository/memory"
	"healthlink-be/internal/repository/specification"
	"healthlink-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// memStore is the shared backing state for the fake repositories. Staged
// writes apply atomically at Commit under one lock, which preserves the
// members-key uniqueness guarantee under concurrent sends.
type memStore struct {
	mu sync.Mutex

	users         map[uuid.UUID]*entity.User
	conversations map[uuid.UUID]*entity.Conversation
	byMembersKey  map[string]uuid.UUID
	members       map[uuid.UUID][]*entity.ConversationMember
	messages      map[uuid.UUID]*entity.Message
	messageOrder  []uuid.UUID
	files         map[uuid.UUID]*entity.File
	associations  []*entity.FileAssociation

	failMessageCreate bool
	failUserLookup    error
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*entity.User),
		conversations: make(map[uuid.UUID]*entity.Conversation),
		byMembersKey:  make(map[string]uuid.UUID),
		members:       make(map[uuid.UUID][]*entity.ConversationMember),
		messages:      make(map[uuid.UUID]*entity.Message),
		files:         make(map[uuid.UUID]*entity.File),
	}
}

func (s *memStore) addUser(user *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Id] = user
}

func (s *memStore) counts() (conversations, members, messages, files, associations int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		members += len(m)
	}
	return len(s.conversations), members, len(s.messages), len(s.files), len(s.associations)
}

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *memStore
	ops   []func(s *memStore) error
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.ops = u.ops[:0]
	return nil
}

func (u *fakeUow) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, op := range u.ops {
		if err := op(u.store); err != nil {
			return err
		}
	}
	u.ops = nil
	return nil
}

func (u *fakeUow) Rollback() error {
	u.ops = nil
	return nil
}

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{u: u}
}

func (u *fakeUow) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{u: u}
}

func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{u: u}
}

func (u *fakeUow) FileRepository() contract.FileRepository {
	return &fakeFileRepo{u: u}
}

type fakeUserRepo struct{ u *fakeUow }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	r.u.store.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	if r.u.store.failUserLookup != nil {
		return nil, r.u.store.failUserLookup
	}
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if user, ok := r.u.store.users[sp.ID]; ok {
				return user, nil
			}
			return nil, nil
		case specification.ByEmail:
			for _, user := range r.u.store.users {
				if user.Email == sp.Email {
					return user, nil
				}
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	for _, spec := range specs {
		if sp, ok := spec.(specification.ByID); ok {
			if _, found := r.u.store.users[sp.ID]; found {
				return 1, nil
			}
			return 0, nil
		}
	}
	return int64(len(r.u.store.users)), nil
}

type fakeConversationRepo struct{ u *fakeUow }

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	c := *conversation
	r.u.ops = append(r.u.ops, func(s *memStore) error {
		if _, exists := s.byMembersKey[c.MembersKey]; exists {
			return fmt.Errorf("create conversation %s: %w", c.MembersKey, contract.ErrConversationExists)
		}
		s.conversations[c.Id] = &c
		s.byMembersKey[c.MembersKey] = c.Id
		return nil
	})
	return nil
}

func (r *fakeConversationRepo) CreateMembers(ctx context.Context, members []*entity.ConversationMember) error {
	copied := make([]*entity.ConversationMember, len(members))
	for i, m := range members {
		mm := *m
		copied[i] = &mm
	}
	r.u.ops = append(r.u.ops, func(s *memStore) error {
		for _, m := range copied {
			s.members[m.ConversationId] = append(s.members[m.ConversationId], m)
		}
		return nil
	})
	return nil
}

func (r *fakeConversationRepo) Touch(ctx context.Context, id uuid.UUID) error {
	r.u.ops = append(r.u.ops, func(s *memStore) error {
		if c, ok := s.conversations[id]; ok {
			now := nowPtr()
			c.UpdatedAt = now
		}
		return nil
	})
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByMembersKey:
			if id, ok := r.u.store.byMembersKey[sp.MembersKey]; ok {
				c := *r.u.store.conversations[id]
				return &c, nil
			}
			return nil, nil
		case specification.ByID:
			if c, ok := r.u.store.conversations[sp.ID]; ok {
				cc := *c
				return &cc, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.Conversation, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	var result []*entity.Conversation
	for id, conversation := range r.u.store.conversations {
		for _, m := range r.u.store.members[id] {
			if m.UserId == userId {
				c := *conversation
				result = append(result, &c)
				break
			}
		}
	}
	return result, nil
}

func (r *fakeConversationRepo) FindMembers(ctx context.Context, conversationId uuid.UUID) ([]*entity.ConversationMember, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	return append([]*entity.ConversationMember(nil), r.u.store.members[conversationId]...), nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	return int64(len(r.u.store.conversations)), nil
}

func (r *fakeConversationRepo) CountMembers(ctx context.Context, conversationId uuid.UUID) (int64, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	return int64(len(r.u.store.members[conversationId])), nil
}

type fakeMessageRepo struct{ u *fakeUow }

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	if r.u.store.failMessageCreate {
		return errors.New("simulated message insert failure")
	}
	m := *message
	m.Attachments = nil
	r.u.ops = append(r.u.ops, func(s *memStore) error {
		s.messages[m.Id] = &m
		s.messageOrder = append(s.messageOrder, m.Id)
		return nil
	})
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	for _, spec := range specs {
		if sp, ok := spec.(specification.ByID); ok {
			if m, found := r.u.store.messages[sp.ID]; found {
				mm := *m
				mm.Attachments = nil
				return &mm, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()

	var conversationId *uuid.UUID
	limit, offset := 0, 0
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByConversationID:
			id := sp.ConversationID
			conversationId = &id
		case specification.Pagination:
			limit, offset = sp.Limit, sp.Offset
		}
	}

	var result []*entity.Message
	for _, id := range r.u.store.messageOrder {
		m := r.u.store.messages[id]
		if conversationId != nil && m.ConversationId != *conversationId {
			continue
		}
		mm := *m
		mm.Attachments = nil
		result = append(result, &mm)
	}

	if offset > 0 {
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	return int64(len(r.u.store.messages)), nil
}

type fakeFileRepo struct{ u *fakeUow }

func (r *fakeFileRepo) Create(ctx context.Context, file *entity.File) error {
	f := *file
	r.u.ops = append(r.u.ops, func(s *memStore) error {
		s.files[f.Id] = &f
		return nil
	})
	return nil
}

func (r *fakeFileRepo) CreateAssociation(ctx context.Context, association *entity.FileAssociation) error {
	a := *association
	r.u.ops = append(r.u.ops, func(s *memStore) error {
		s.associations = append(s.associations, &a)
		return nil
	})
	return nil
}

func (r *fakeFileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.File, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	for _, spec := range specs {
		if sp, ok := spec.(specification.ByID); ok {
			if f, found := r.u.store.files[sp.ID]; found {
				ff := *f
				return &ff, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeFileRepo) FindAssociationsByTarget(ctx context.Context, targetKind string, targetIds []uuid.UUID) ([]*entity.FileAssociation, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(targetIds))
	for _, id := range targetIds {
		wanted[id] = struct{}{}
	}
	var result []*entity.FileAssociation
	for _, a := range r.u.store.associations {
		if a.TargetKind != targetKind {
			continue
		}
		if _, ok := wanted[a.TargetId]; !ok {
			continue
		}
		aa := *a
		if f, found := r.u.store.files[a.FileId]; found {
			meta := *f
			meta.Content = nil
			aa.File = &meta
		}
		result = append(result, &aa)
	}
	return result, nil
}

func (r *fakeFileRepo) FindAssociationsByFileId(ctx context.Context, fileId uuid.UUID) ([]*entity.FileAssociation, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	var result []*entity.FileAssociation
	for _, a := range r.u.store.associations {
		if a.FileId == fileId {
			aa := *a
			result = append(result, &aa)
		}
	}
	return result, nil
}

func (r *fakeFileRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	return int64(len(r.u.store.files)), nil
}

func (r *fakeFileRepo) CountAssociations(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	return int64(len(r.u.store.associations)), nil
}

type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturingPublisher) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.payloads...)
}

func newChatFixture(t *testing.T) (*memStore, *capturingPublisher, IChatService, uuid.UUID, uuid.UUID) {
	t.Helper()
	store := newMemStore()
	factory := &fakeFactory{store: store}

	doctor := &entity.User{Id: uuid.New(), Email: "doc@example.com", FullName: "Doc", Role: entity.UserRoleDoctor}
	patient := &entity.User{Id: uuid.New(), Email: "pat@example.com", FullName: "Pat", Role: entity.UserRolePatient}
	store.addUser(doctor)
	store.addUser(patient)

	publisher := &capturingPublisher{}
	directory := NewUserDirectory(factory, memory.NewDirectoryCache())
	svc := NewChatService(factory, publisher, nil, directory, nopLogger{}, 5*1024*1024)
	return store, publisher, svc, doctor.Id, patient.Id
}

func strPtr(s string) *string { return &s }

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}

func TestSendMessageRoundTrip(t *testing.T) {
	store, publisher, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	res, err := svc.SendMessage(ctx, doctorId, &dto.SendMessageRequest{
		ReceiverId: patientId,
		Text:       strPtr("hello"),
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, doctorId, res.SenderId)
	assert.Equal(t, patientId, res.ReceiverId)
	require.NotNil(t, res.Text)
	assert.Equal(t, "hello", *res.Text)

	conversations, members, messages, _, _ := store.counts()
	assert.Equal(t, 1, conversations)
	assert.Equal(t, 2, members)
	assert.Equal(t, 1, messages)

	// The receiver reads the message back through history.
	history, err := svc.GetMessages(ctx, patientId, res.ConversationId, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, res.Id, history[0].Id)
	assert.Equal(t, "hello", *history[0].Text)

	// A delivery event was enqueued for the receiver.
	published := publisher.published()
	require.Len(t, published, 1)
	var event dto.MessageCreatedEvent
	require.NoError(t, json.Unmarshal(published[0], &event))
	assert.Equal(t, patientId, event.ReceiverId)
	assert.Equal(t, res.Id, event.Message.Id)
}

func TestSendMessageReusesConversationBothDirections(t *testing.T) {
	store, _, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	first, err := svc.SendMessage(ctx, doctorId, &dto.SendMessageRequest{ReceiverId: patientId, Text: strPtr("hi")})
	require.NoError(t, err)

	second, err := svc.SendMessage(ctx, patientId, &dto.SendMessageRequest{ReceiverId: doctorId, Text: strPtr("hi back")})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationId, second.ConversationId)

	conversations, _, messages, _, _ := store.counts()
	assert.Equal(t, 1, conversations)
	assert.Equal(t, 2, messages)
}

func TestConcurrentSendsConvergeOnOneConversation(t *testing.T) {
	store, _, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	const n = 10
	results := make([]*dto.MessageResponse, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, receiver := doctorId, patientId
			if i%2 == 1 {
				sender, receiver = patientId, doctorId
			}
			results[i], errs[i] = svc.SendMessage(ctx, sender, &dto.SendMessageRequest{
				ReceiverId: receiver,
				Text:       strPtr(fmt.Sprintf("msg-%d", i)),
			})
		}(i)
	}
	wg.Wait()

	conversationIds := make(map[uuid.UUID]struct{})
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		conversationIds[results[i].ConversationId] = struct{}{}
	}
	assert.Len(t, conversationIds, 1)

	conversations, members, messages, _, _ := store.counts()
	assert.Equal(t, 1, conversations)
	assert.Equal(t, 2, members)
	assert.Equal(t, n, messages)
}

func TestSendMessageValidation(t *testing.T) {
	_, _, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		sender  uuid.UUID
		req     *dto.SendMessageRequest
		wantErr error
	}{
		{
			name:    "empty content",
			sender:  doctorId,
			req:     &dto.SendMessageRequest{ReceiverId: patientId},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "empty text no attachments",
			sender:  doctorId,
			req:     &dto.SendMessageRequest{ReceiverId: patientId, Text: strPtr("")},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "self send",
			sender:  doctorId,
			req:     &dto.SendMessageRequest{ReceiverId: doctorId, Text: strPtr("hi")},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "missing receiver",
			sender:  doctorId,
			req:     &dto.SendMessageRequest{Text: strPtr("hi")},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unknown receiver",
			sender:  doctorId,
			req:     &dto.SendMessageRequest{ReceiverId: uuid.New(), Text: strPtr("hi")},
			wantErr: ErrReceiverNotFound,
		},
		{
			name:   "attachment missing mime type",
			sender: doctorId,
			req: &dto.SendMessageRequest{
				ReceiverId:  patientId,
				Attachments: []dto.AttachmentInput{{Content: []byte("data")}},
			},
			wantErr: ErrInvalidRequest,
		},
		{
			name:   "attachment too large",
			sender: doctorId,
			req: &dto.SendMessageRequest{
				ReceiverId:  patientId,
				Attachments: []dto.AttachmentInput{{MimeType: "application/pdf", Content: make([]byte, 6*1024*1024)}},
			},
			wantErr: ErrAttachmentTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, tt.sender, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSendMessageEmptyContentLeavesStoreUntouched(t *testing.T) {
	store, publisher, svc, doctorId, patientId := newChatFixture(t)

	_, err := svc.SendMessage(context.Background(), doctorId, &dto.SendMessageRequest{ReceiverId: patientId})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	conversations, members, messages, files, associations := store.counts()
	assert.Zero(t, conversations)
	assert.Zero(t, members)
	assert.Zero(t, messages)
	assert.Zero(t, files)
	assert.Zero(t, associations)
	assert.Empty(t, publisher.published())
}

func TestSendMessageRollsBackOnWriteFailure(t *testing.T) {
	store, publisher, svc, doctorId, patientId := newChatFixture(t)
	store.failMessageCreate = true

	_, err := svc.SendMessage(context.Background(), doctorId, &dto.SendMessageRequest{
		ReceiverId: patientId,
		Text:       strPtr("doomed"),
		Attachments: []dto.AttachmentInput{
			{MimeType: "image/png", FileName: strPtr("scan.png"), Content: []byte("pngbytes")},
		},
	})
	require.Error(t, err)

	// The conversation may exist (created in its own transaction) but no part
	// of the message write survives.
	_, _, messages, files, associations := store.counts()
	assert.Zero(t, messages)
	assert.Zero(t, files)
	assert.Zero(t, associations)
	assert.Empty(t, publisher.published())
}

func TestSendMessageWithAttachment(t *testing.T) {
	store, _, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	content := []byte("%PDF-1.4 lab results")
	res, err := svc.SendMessage(ctx, doctorId, &dto.SendMessageRequest{
		ReceiverId: patientId,
		Attachments: []dto.AttachmentInput{
			{MimeType: "application/pdf", FileName: strPtr("results.pdf"), Content: content},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Attachments, 1)
	assert.Equal(t, "application/pdf", res.Attachments[0].MimeType)
	assert.Equal(t, int64(len(content)), res.Attachments[0].SizeBytes)

	_, _, messages, files, associations := store.counts()
	assert.Equal(t, 1, messages)
	assert.Equal(t, 1, files)
	assert.Equal(t, 1, associations)

	// History hydrates attachment metadata.
	history, err := svc.GetMessages(ctx, patientId, res.ConversationId, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, history[0].Attachments, 1)
	assert.Equal(t, res.Attachments[0].FileId, history[0].Attachments[0].FileId)

	// Both parties can download the content; strangers cannot.
	download, err := svc.GetFile(ctx, patientId, res.Attachments[0].FileId)
	require.NoError(t, err)
	assert.Equal(t, content, download.Content)

	_, err = svc.GetFile(ctx, uuid.New(), res.Attachments[0].FileId)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSendMessageSucceedsWhenPublishFails(t *testing.T) {
	store, publisher, svc, doctorId, patientId := newChatFixture(t)
	publisher.err = errors.New("bus down")

	res, err := svc.SendMessage(context.Background(), doctorId, &dto.SendMessageRequest{
		ReceiverId: patientId,
		Text:       strPtr("still sent"),
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	_, _, messages, _, _ := store.counts()
	assert.Equal(t, 1, messages)
}

func TestGetMessagesAccessControl(t *testing.T) {
	_, _, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	res, err := svc.SendMessage(ctx, doctorId, &dto.SendMessageRequest{ReceiverId: patientId, Text: strPtr("private")})
	require.NoError(t, err)

	_, err = svc.GetMessages(ctx, uuid.New(), res.ConversationId, 0, 0)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetMessages(ctx, doctorId, uuid.New(), 0, 0)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestGetMessagesPreservesCreationOrder(t *testing.T) {
	_, _, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	var conversationId uuid.UUID
	for i := 0; i < 5; i++ {
		res, err := svc.SendMessage(ctx, doctorId, &dto.SendMessageRequest{
			ReceiverId: patientId,
			Text:       strPtr(fmt.Sprintf("msg-%d", i)),
		})
		require.NoError(t, err)
		conversationId = res.ConversationId
	}

	history, err := svc.GetMessages(ctx, doctorId, conversationId, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i, message := range history {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), *message.Text)
	}

	// Pagination slices the same order.
	page, err := svc.GetMessages(ctx, doctorId, conversationId, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "msg-1", *page[0].Text)
	assert.Equal(t, "msg-2", *page[1].Text)
}

func TestGetConversationsListsMembership(t *testing.T) {
	_, _, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	res, err := svc.SendMessage(ctx, doctorId, &dto.SendMessageRequest{ReceiverId: patientId, Text: strPtr("hi")})
	require.NoError(t, err)

	for _, userId := range []uuid.UUID{doctorId, patientId} {
		conversations, err := svc.GetConversations(ctx, userId)
		require.NoError(t, err)
		require.Len(t, conversations, 1)
		assert.Equal(t, res.ConversationId, conversations[0].Id)
		assert.ElementsMatch(t, []uuid.UUID{doctorId, patientId}, conversations[0].MemberIds)
	}

	// A third party sees nothing.
	conversations, err := svc.GetConversations(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestHandleSendMessage(t *testing.T) {
	_, _, svc, doctorId, patientId := newChatFixture(t)
	ctx := context.Background()

	payload, err := json.Marshal(dto.SendMessageRequest{ReceiverId: patientId, Text: strPtr("over the wire")})
	require.NoError(t, err)

	res, err := svc.HandleSendMessage(ctx, doctorId, payload)
	require.NoError(t, err)
	assert.Equal(t, "over the wire", *res.Text)

	_, err = svc.HandleSendMessage(ctx, doctorId, []byte("{not json"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
