package service_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cagrik/pazarly/internal/auditlog"
	"github.com/cagrik/pazarly/internal/models"
	"github.com/cagrik/pazarly/internal/repository"
	"github.com/cagrik/pazarly/internal/service"
	"github.com/cagrik/pazarly/internal/testutil"
	"github.com/cagrik/pazarly/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConversationServiceIntegrationTestSuite defines test suite
type ConversationServiceIntegrationTestSuite struct {
	suite.Suite
	testDB              *testutil.TestDatabase
	auditPath           string
	audit               *auditlog.Log
	messageRepo         *repository.MessageRepository
	conversationService *service.ConversationService

	user1    *models.User // ad owner
	user2    *models.User
	category *models.Category
	ad       *models.Ad
}

// SetupSuite runs before all tests
func (s *ConversationServiceIntegrationTestSuite) SetupSuite() {
	// Initialize logger (required for services)
	logger.Init(false)

	// Start in-memory SQLite (migrations run automatically)
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.auditPath = filepath.Join(os.TempDir(), "test_chat_audit.log")
}

// TearDownSuite runs after all tests
func (s *ConversationServiceIntegrationTestSuite) TearDownSuite() {
	s.audit.Close()
	os.RemoveAll(s.auditPath)
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test: clean state, fresh fixtures
func (s *ConversationServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	if s.audit != nil {
		s.audit.Close()
	}
	os.RemoveAll(s.auditPath)
	audit, err := auditlog.NewLog(s.auditPath)
	require.NoError(s.T(), err)
	s.audit = audit

	s.messageRepo = repository.NewMessageRepository(s.testDB.DB)
	adRepo := repository.NewAdRepository(s.testDB.DB)
	userRepo := repository.NewUserRepository(s.testDB.DB)
	s.conversationService = service.NewConversationService(s.messageRepo, adRepo, userRepo, s.audit)

	s.user1 = testutil.CreateTestUser(s.T(), s.testDB.DB, "user1", "user1@example.com", "Pass12345")
	s.user2 = testutil.CreateTestUser(s.T(), s.testDB.DB, "user2", "user2@example.com", "Pass12345")
	s.category = testutil.CreateTestCategory(s.T(), s.testDB.DB, "Test Category", "test-category")
	s.ad = testutil.CreateTestAd(s.T(), s.testDB.DB, s.user1, s.category, "Original Title", "test-ad")
}

func (s *ConversationServiceIntegrationTestSuite) conversationID() string {
	return service.DeriveConversationID(s.user1, s.user2, s.ad.Slug)
}

func (s *ConversationServiceIntegrationTestSuite) messageCount() int64 {
	var count int64
	s.testDB.DB.Model(&models.Message{}).Count(&count)
	return count
}

// TestStartConversationAndReply covers the full two-user exchange
func (s *ConversationServiceIntegrationTestSuite) TestStartConversationAndReply() {
	// user2 contacts the ad owner
	first, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.conversationID(), first.ConversationID)
	assert.Equal(s.T(), s.user1.ID, first.ReceiverID)

	// owner replies
	reply, err := s.conversationService.SendReply(s.user1.ID, first.ConversationID, "Hi!")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ConversationID, reply.ConversationID)
	assert.Equal(s.T(), s.user2.ID, reply.ReceiverID)

	// both sides see exactly one conversation
	forOwner, err := s.conversationService.ListConversations(s.user1.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), forOwner, 1)
	assert.Equal(s.T(), "Hi!", forOwner[0].LastMessage.Body)
	assert.Equal(s.T(), s.user2.ID, forOwner[0].OppositeUser.ID)
	assert.Equal(s.T(), s.ad.ID, forOwner[0].RelatedAd.ID)

	forBuyer, err := s.conversationService.ListConversations(s.user2.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), forBuyer, 1)
	assert.Equal(s.T(), s.user1.ID, forBuyer[0].OppositeUser.ID)
}

// TestStartConversationWithOwnAd must be rejected before any derivation
func (s *ConversationServiceIntegrationTestSuite) TestStartConversationWithOwnAd() {
	_, err := s.conversationService.StartConversation(s.user1.ID, s.category.Slug, s.ad.Slug, "Hello me")
	assert.ErrorIs(s.T(), err, service.ErrSelfConversation)
	assert.Equal(s.T(), int64(0), s.messageCount())
}

// TestStartConversationUnknownAd
func (s *ConversationServiceIntegrationTestSuite) TestStartConversationUnknownAd() {
	_, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, "no-such-ad", "Hello!")
	assert.ErrorIs(s.T(), err, service.ErrAdNotFound)
}

// TestEmptyBodiesNeverReachTheStore
func (s *ConversationServiceIntegrationTestSuite) TestEmptyBodiesNeverReachTheStore() {
	_, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "   \t ")
	assert.ErrorIs(s.T(), err, service.ErrEmptyMessageBody)
	assert.Equal(s.T(), int64(0), s.messageCount())

	// seed one real message, then try an empty reply and an empty edit
	msg, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)

	_, err = s.conversationService.SendReply(s.user1.ID, msg.ConversationID, "  ")
	assert.ErrorIs(s.T(), err, service.ErrEmptyMessageBody)
	assert.Equal(s.T(), int64(1), s.messageCount())

	err = s.conversationService.EditMessage(s.user2.ID, msg.ConversationID, msg.ID, " \n ")
	assert.ErrorIs(s.T(), err, service.ErrEmptyMessageBody)

	var unchanged models.Message
	s.testDB.DB.First(&unchanged, msg.ID)
	assert.Equal(s.T(), "Hello!", unchanged.Body)
}

// TestSendReplyRequiresExistingConversation
func (s *ConversationServiceIntegrationTestSuite) TestSendReplyRequiresExistingConversation() {
	_, err := s.conversationService.SendReply(s.user1.ID, s.conversationID(), "Anyone there?")
	assert.ErrorIs(s.T(), err, service.ErrConversationNotFound)
}

// TestSendReplyNonParticipant: an outsider replying into a thread is
// indistinguishable from the thread not existing
func (s *ConversationServiceIntegrationTestSuite) TestSendReplyNonParticipant() {
	msg, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)

	carol := testutil.CreateTestUser(s.T(), s.testDB.DB, "carol", "carol@example.com", "Pass12345")
	_, err = s.conversationService.SendReply(carol.ID, msg.ConversationID, "Let me in")
	assert.ErrorIs(s.T(), err, service.ErrConversationNotFound)
	assert.Equal(s.T(), int64(1), s.messageCount())
}

// TestGetConversationOrdering: ordering follows created_at, not insertion
func (s *ConversationServiceIntegrationTestSuite) TestGetConversationOrdering() {
	conversationID := s.conversationID()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// inserted out of order on purpose
	testutil.CreateTestMessage(s.T(), s.testDB.DB, s.user2, s.user1, s.ad, conversationID, "third", base.Add(2*time.Minute))
	testutil.CreateTestMessage(s.T(), s.testDB.DB, s.user2, s.user1, s.ad, conversationID, "first", base)
	testutil.CreateTestMessage(s.T(), s.testDB.DB, s.user1, s.user2, s.ad, conversationID, "second", base.Add(time.Minute))

	detail, err := s.conversationService.GetConversation(s.user1.ID, conversationID)
	require.NoError(s.T(), err)
	require.Len(s.T(), detail.Messages, 3)
	assert.Equal(s.T(), "first", detail.Messages[0].Body)
	assert.Equal(s.T(), "second", detail.Messages[1].Body)
	assert.Equal(s.T(), "third", detail.Messages[2].Body)

	// opposite user resolved from the latest message
	assert.Equal(s.T(), s.user2.ID, detail.OppositeUser.ID)
	assert.Equal(s.T(), s.ad.ID, detail.RelatedAd.ID)
}

// TestGetConversationAccess: empty or foreign threads are both a not-found
func (s *ConversationServiceIntegrationTestSuite) TestGetConversationAccess() {
	_, err := s.conversationService.GetConversation(s.user1.ID, s.conversationID())
	assert.ErrorIs(s.T(), err, service.ErrConversationNotFound)

	msg, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)

	carol := testutil.CreateTestUser(s.T(), s.testDB.DB, "carol", "carol@example.com", "Pass12345")
	_, err = s.conversationService.GetConversation(carol.ID, msg.ConversationID)
	assert.ErrorIs(s.T(), err, service.ErrConversationNotFound)
}

// TestEditMessageRoundTrip: body changes, id and created_at do not
func (s *ConversationServiceIntegrationTestSuite) TestEditMessageRoundTrip() {
	msg, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)

	err = s.conversationService.EditMessage(s.user2.ID, msg.ConversationID, msg.ID, "Hello, edited!")
	require.NoError(s.T(), err)

	var edited models.Message
	require.NoError(s.T(), s.testDB.DB.First(&edited, msg.ID).Error)
	assert.Equal(s.T(), "Hello, edited!", edited.Body)
	assert.Equal(s.T(), msg.ID, edited.ID)
	assert.WithinDuration(s.T(), msg.CreatedAt, edited.CreatedAt, time.Second)
	assert.Equal(s.T(), msg.ConversationID, edited.ConversationID)
}

// TestEditMessageWrongSender: the receiver cannot edit, and the failure
// reads as not-found
func (s *ConversationServiceIntegrationTestSuite) TestEditMessageWrongSender() {
	msg, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)

	err = s.conversationService.EditMessage(s.user1.ID, msg.ConversationID, msg.ID, "hijacked")
	assert.ErrorIs(s.T(), err, service.ErrMessageNotFound)

	var unchanged models.Message
	s.testDB.DB.First(&unchanged, msg.ID)
	assert.Equal(s.T(), "Hello!", unchanged.Body)
}

// TestEditMessageWrongConversation: a valid message id under the wrong key
// is also a not-found
func (s *ConversationServiceIntegrationTestSuite) TestEditMessageWrongConversation() {
	msg, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)

	err = s.conversationService.EditMessage(s.user2.ID, "some-other-conversation", msg.ID, "moved")
	assert.ErrorIs(s.T(), err, service.ErrMessageNotFound)
}

// TestDeleteMessageLifecycle: remaining flag and index visibility
func (s *ConversationServiceIntegrationTestSuite) TestDeleteMessageLifecycle() {
	first, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)
	second, err := s.conversationService.SendReply(s.user1.ID, first.ConversationID, "Hi!")
	require.NoError(s.T(), err)

	remaining, err := s.conversationService.DeleteMessage(s.user1.ID, first.ConversationID, second.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), remaining, "One message left, conversation still alive")

	remaining, err = s.conversationService.DeleteMessage(s.user2.ID, first.ConversationID, first.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), remaining, "Deleting the last message empties the conversation")

	// the key vanishes from both users' conversation lists
	forOwner, err := s.conversationService.ListConversations(s.user1.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), forOwner)

	forBuyer, err := s.conversationService.ListConversations(s.user2.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), forBuyer)
}

// TestDeleteMessageWrongSender
func (s *ConversationServiceIntegrationTestSuite) TestDeleteMessageWrongSender() {
	msg, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)

	_, err = s.conversationService.DeleteMessage(s.user1.ID, msg.ConversationID, msg.ID)
	assert.ErrorIs(s.T(), err, service.ErrMessageNotFound)
	assert.Equal(s.T(), int64(1), s.messageCount())
}

// TestSummarizeEmptyConversation returns nil rather than an error
func (s *ConversationServiceIntegrationTestSuite) TestSummarizeEmptyConversation() {
	summary, err := s.conversationService.Summarize(s.user1.ID, s.conversationID())
	require.NoError(s.T(), err)
	assert.Nil(s.T(), summary)
}

// TestAuditTrail records every message mutation
func (s *ConversationServiceIntegrationTestSuite) TestAuditTrail() {
	msg, err := s.conversationService.StartConversation(s.user2.ID, s.category.Slug, s.ad.Slug, "Hello!")
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.conversationService.EditMessage(s.user2.ID, msg.ConversationID, msg.ID, "Hello again!"))
	_, err = s.conversationService.DeleteMessage(s.user2.ID, msg.ConversationID, msg.ID)
	require.NoError(s.T(), err)

	entries, err := s.audit.ReadAll()
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 3)
	assert.Equal(s.T(), auditlog.EventMessageSent, entries[0].Event)
	assert.Equal(s.T(), auditlog.EventMessageEdited, entries[1].Event)
	assert.Equal(s.T(), auditlog.EventMessageDeleted, entries[2].Event)
	assert.Equal(s.T(), msg.ConversationID, entries[0].ConversationID)
	assert.Equal(s.T(), s.user2.ID, entries[0].ActorID)
}

// TestSuite runs all tests in the suite
func TestConversationServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ConversationServiceIntegrationTestSuite))
}
