package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/TodoSync/internal/models"
)

func TestCreateListRequiresName(t *testing.T) {
	f := newFixture(t)
	alice, err := f.authSvc.Register("alice")
	require.NoError(t, err)

	_, err = f.lists.CreateList(identity(alice), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.events.Events())
}

func TestCreateListBroadcasts(t *testing.T) {
	f := newFixture(t)
	alice, err := f.authSvc.Register("alice")
	require.NoError(t, err)

	list, err := f.lists.CreateList(identity(alice), "Team")
	require.NoError(t, err)

	created := f.events.Named(EventListCreated)
	require.Len(t, created, 1)
	assert.Equal(t, list.ID, created[0].Topic)
	assert.Equal(t, listPayload{List: list}, created[0].Payload)
}

func TestJoinListIsIdempotent(t *testing.T) {
	f := newFixture(t)
	alice, err := f.authSvc.Register("alice")
	require.NoError(t, err)
	list, err := f.lists.CreateList(identity(alice), "Team")
	require.NoError(t, err)

	// The owner re-joining via the key must not duplicate the membership.
	_, err = f.lists.JoinList(identity(alice), list.Key)
	require.NoError(t, err)

	got, ok := f.lists.GetList(list.ID)
	require.True(t, ok)
	assert.Equal(t, []string{alice.ID}, got.Members)
}

func TestJoinListUnknownKey(t *testing.T) {
	f := newFixture(t)
	alice, err := f.authSvc.Register("alice")
	require.NoError(t, err)

	_, err = f.lists.JoinList(identity(alice), "wrong-key")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.events.Named(EventMemberJoined))
}

func TestListsForFiltersByMembership(t *testing.T) {
	f := newFixture(t)
	alice, err := f.authSvc.Register("alice")
	require.NoError(t, err)
	bob, err := f.authSvc.Register("bob")
	require.NoError(t, err)

	mine, err := f.lists.CreateList(identity(alice), "Mine")
	require.NoError(t, err)
	_, err = f.lists.CreateList(identity(bob), "Theirs")
	require.NoError(t, err)

	got := f.lists.ListsFor(alice.ID)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	assert.Empty(t, f.lists.ListsFor("stranger"))
	assert.IsType(t, []models.TodoList{}, f.lists.ListsFor("stranger"))
}
