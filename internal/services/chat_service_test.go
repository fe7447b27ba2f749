package services

import (
	"testing"
	"time"

	"fleet-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	got []*models.ChatMessage
}

func (n *recordingNotifier) Publish(msg *models.ChatMessage) {
	n.got = append(n.got, msg)
}

func TestChat_ConversationIsOrderedAndPairwise(t *testing.T) {
	f := newFleet(t)
	tick := testNow
	f.chat.Clock = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	notifier := &recordingNotifier{}
	f.chat.Notifier = notifier

	send := func(from *models.User, to, text string) {
		t.Helper()
		_, err := f.chat.Send(f.ctx, from, &models.SendMessageRequest{ReceiverID: to, Text: text})
		require.NoError(t, err)
	}
	send(f.manager, f.driver.ID, "Where are you?")
	send(f.driver, f.manager.ID, "Near Comilla")
	send(f.manager, f.sub.ID, "Unrelated")
	send(f.manager, f.driver.ID, "OK")

	conv, err := f.chat.Conversation(f.ctx, f.driver.ID, f.manager.ID)
	require.NoError(t, err)
	require.Len(t, conv, 3)
	assert.Equal(t, "Where are you?", conv[0].Text)
	assert.Equal(t, "Near Comilla", conv[1].Text)
	assert.Equal(t, "OK", conv[2].Text)
	for i := 1; i < len(conv); i++ {
		assert.False(t, conv[i].Timestamp.Before(conv[i-1].Timestamp))
	}

	assert.Len(t, notifier.got, 4)
}

func TestConversation_EqualTimestampsKeepAppendOrder(t *testing.T) {
	at := testNow
	msgs := []*models.ChatMessage{
		{ID: "3", SenderID: "a", ReceiverID: "b", Timestamp: at.Add(time.Minute)},
		{ID: "1", SenderID: "b", ReceiverID: "a", Timestamp: at},
		{ID: "2", SenderID: "a", ReceiverID: "b", Timestamp: at},
		{ID: "x", SenderID: "a", ReceiverID: "c", Timestamp: at},
	}

	got := Conversation(msgs, "a", "b")

	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "3", got[2].ID)
}

func TestChat_SendValidation(t *testing.T) {
	f := newFleet(t)

	_, err := f.chat.Send(f.ctx, f.manager, &models.SendMessageRequest{ReceiverID: f.driver.ID, Text: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.chat.Send(f.ctx, f.manager, &models.SendMessageRequest{ReceiverID: f.manager.ID, Text: "me"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.chat.Send(f.ctx, f.manager, &models.SendMessageRequest{ReceiverID: "ghost", Text: "hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChat_SendOnlyToContacts(t *testing.T) {
	f := newFleet(t)
	other := &models.User{ID: "mgr2", Name: "Other", Role: models.RoleManager, IsActive: true}
	foreign := &models.User{ID: "drv2", Name: "Foreign", Role: models.RoleDriver, AssignedManagerID: "mgr2", IsActive: true}
	require.NoError(t, f.st.Users.Create(f.ctx, other))
	require.NoError(t, f.st.Users.Create(f.ctx, foreign))

	_, err := f.chat.Send(f.ctx, f.driver, &models.SendMessageRequest{ReceiverID: foreign.ID, Text: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.chat.Send(f.ctx, f.manager, &models.SendMessageRequest{ReceiverID: other.ID, Text: "hi"})
	assert.ErrorIs(t, err, ErrForbidden, "managers only reach their own team")
	_, err = f.chat.Send(f.ctx, f.admin, &models.SendMessageRequest{ReceiverID: f.driver.ID, Text: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.chat.Send(f.ctx, f.driver, &models.SendMessageRequest{ReceiverID: f.sub.ID, Text: "at the gate"})
	assert.NoError(t, err)
	_, err = f.chat.Send(f.ctx, f.admin, &models.SendMessageRequest{ReceiverID: other.ID, Text: "hi"})
	assert.NoError(t, err)

	msgs, err := f.st.Messages.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestChat_ContactsByRole(t *testing.T) {
	f := newFleet(t)

	ids := func(cs []models.Contact) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	admin, err := f.chat.Contacts(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, []string{f.manager.ID}, ids(admin))

	manager, err := f.chat.Contacts(f.ctx, f.manager)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.driver.ID, f.sub.ID, f.ujala.ID}, ids(manager))

	driver, err := f.chat.Contacts(f.ctx, f.driver)
	require.NoError(t, err)
	assert.Equal(t, f.manager.ID, ids(driver)[0])
	assert.ElementsMatch(t, []string{f.manager.ID, f.sub.ID, f.ujala.ID}, ids(driver))
}

func TestDirectory_SkipsInactive(t *testing.T) {
	f := newFleet(t)
	f.ujala.IsActive = false
	require.NoError(t, f.st.Users.Update(f.ctx, f.ujala))

	driver, err := f.chat.Directory(f.ctx, f.driver)
	require.NoError(t, err)
	require.Len(t, driver, 2)
	assert.Equal(t, f.manager.ID, driver[0].ID)
	assert.Equal(t, f.sub.ID, driver[1].ID)

	sub, err := f.chat.Directory(f.ctx, f.sub)
	require.NoError(t, err)
	require.Len(t, sub, 1)
	assert.Equal(t, f.driver.ID, sub[0].ID)
}
