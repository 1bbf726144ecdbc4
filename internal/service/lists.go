package service

import (
	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/models"
	"github.com/atinyakov/TodoSync/internal/repository"
	"github.com/atinyakov/TodoSync/internal/storage"
)

// ListService manages collaborative lists and their membership.
type ListService struct {
	store  *storage.Store
	lists  *repository.Repository[models.TodoList]
	events Broadcaster
	log    *zap.Logger
}

// NewListService constructs the list service.
func NewListService(store *storage.Store, lists *repository.Repository[models.TodoList], events Broadcaster, log *zap.Logger) *ListService {
	return &ListService{store: store, lists: lists, events: events, log: log}
}

// CreateList creates a list with a fresh invite key, the caller as sole
// member, and broadcasts listCreated to the new list's topic.
func (s *ListService) CreateList(caller models.Identity, name string) (models.TodoList, error) {
	if name == "" {
		return models.TodoList{}, ErrInvalidInput
	}

	list := models.TodoList{
		ID:      newID(),
		Name:    name,
		Key:     newInviteKey(inviteKeyLength),
		Members: []string{caller.ID},
	}
	if err := s.lists.Add(list); err != nil {
		return models.TodoList{}, err
	}

	s.events.Broadcast(list.ID, EventListCreated, listPayload{List: list})
	s.log.Info("list created", zap.String("listID", list.ID), zap.String("owner", caller.ID))
	return list, nil
}

// JoinList adds the caller to the list whose invite key matches. Joining twice
// is a no-op; either way the membership mutation happens inside one atomic
// region, and memberJoined is broadcast on success.
func (s *ListService) JoinList(caller models.Identity, key string) (models.TodoList, error) {
	if key == "" {
		return models.TodoList{}, ErrInvalidInput
	}

	var joined models.TodoList
	_, err := s.store.Mutate(func(doc models.Document) (models.Document, error) {
		for i := range doc.Lists {
			if doc.Lists[i].Key != key {
				continue
			}
			if !doc.Lists[i].HasMember(caller.ID) {
				doc.Lists[i].Members = append(doc.Lists[i].Members, caller.ID)
			}
			joined = doc.Lists[i]
			return doc, nil
		}
		return models.Document{}, ErrNotFound
	})
	if err != nil {
		return models.TodoList{}, err
	}

	s.events.Broadcast(joined.ID, EventMemberJoined, memberJoinedPayload{UserID: caller.ID})
	s.log.Info("member joined", zap.String("listID", joined.ID), zap.String("userID", caller.ID))
	return joined, nil
}

// ListsFor returns every list the user is a member of.
func (s *ListService) ListsFor(userID string) []models.TodoList {
	out := []models.TodoList{}
	for _, l := range s.lists.GetAll() {
		if l.HasMember(userID) {
			out = append(out, l)
		}
	}
	return out
}

// GetList returns the list with the given id.
func (s *ListService) GetList(listID string) (models.TodoList, bool) {
	return s.lists.GetByID(listID)
}
