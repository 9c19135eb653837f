package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
)

type forumFixture struct {
	store      store.Store
	users      *UserService
	categories *CategoryService
	topics     *TopicService
	replies    *ReplyService
	messages   *MessageService

	admin domain.User
	alice domain.User
	bob   domain.User
}

func newForumFixture(t *testing.T) *forumFixture {
	t.Helper()
	ctx := context.Background()

	st := newTestStore(t)
	auth := newAuthService(t, st, 15*time.Minute, 7*24*time.Hour)

	f := &forumFixture{
		store:      st,
		users:      &UserService{Store: st, Auth: auth},
		categories: &CategoryService{Store: st},
		topics:     &TopicService{Store: st},
		replies:    &ReplyService{Store: st},
		messages:   &MessageService{Store: st},
	}

	var err error
	f.admin, _, err = f.users.Register(ctx, "admin", "Adm1n!pass")
	require.NoError(t, err)
	require.NoError(t, st.Users().SetAdmin(ctx, f.admin.ID, true))
	f.admin.IsAdmin = true

	f.alice, _, err = f.users.Register(ctx, "alice", "Str0ng!pass")
	require.NoError(t, err)

	f.bob, _, err = f.users.Register(ctx, "bob", "Str0ng!pass")
	require.NoError(t, err)

	return f
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)

	t.Run("duplicate username", func(t *testing.T) {
		_, _, err := f.users.Register(ctx, "alice", "An0ther!pass")
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("short username", func(t *testing.T) {
		_, _, err := f.users.Register(ctx, "al", "Str0ng!pass")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("weak password stores nothing", func(t *testing.T) {
		_, _, err := f.users.Register(ctx, "carol", "weak")
		require.Error(t, err)

		_, err = f.store.Users().GetUserByUsername(ctx, "carol")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("registration logs the user in", func(t *testing.T) {
		_, pair, err := f.users.Register(ctx, "dave", "Str0ng!pass")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
	})
}

func TestUserService_SetAdmin(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)

	t.Run("non-admin cannot promote", func(t *testing.T) {
		err := f.users.SetAdmin(ctx, f.alice, "bob")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown target", func(t *testing.T) {
		err := f.users.SetAdmin(ctx, f.admin, "nobody")
		require.ErrorIs(t, err, ErrUnknownUser)
	})

	t.Run("admin promotes", func(t *testing.T) {
		require.NoError(t, f.users.SetAdmin(ctx, f.admin, "bob"))

		bob, err := f.store.Users().GetUserByUsername(ctx, "bob")
		require.NoError(t, err)
		require.True(t, bob.IsAdmin)
	})
}

func TestCategoryService_PrivacyFiltering(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)

	_, err := f.categories.Create(ctx, f.admin, "general", domain.PrivacyNonPrivate)
	require.NoError(t, err)

	private, err := f.categories.Create(ctx, f.admin, "staff-room", domain.PrivacyPrivate)
	require.NoError(t, err)

	require.NoError(t, f.categories.GrantAccess(ctx, f.admin, private.ID, "alice", false))

	t.Run("guest sees only non-private", func(t *testing.T) {
		cats, err := f.categories.List(ctx, nil, "", store.Page{})
		require.NoError(t, err)
		require.Len(t, cats, 1)
		require.Equal(t, "general", cats[0].Name)
	})

	t.Run("granted user sees the private category", func(t *testing.T) {
		cats, err := f.categories.List(ctx, &f.alice, "", store.Page{})
		require.NoError(t, err)
		require.Len(t, cats, 2)
	})

	t.Run("ungranted user does not", func(t *testing.T) {
		cats, err := f.categories.List(ctx, &f.bob, "", store.Page{})
		require.NoError(t, err)
		require.Len(t, cats, 1)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		cats, err := f.categories.List(ctx, &f.admin, "", store.Page{})
		require.NoError(t, err)
		require.Len(t, cats, 2)
	})

	t.Run("topics listing enforces read access", func(t *testing.T) {
		_, err := f.categories.TopicsByCategory(ctx, &f.bob, private.ID, "", store.TopicSortAsc, store.Page{})
		require.ErrorIs(t, err, ErrForbidden)

		_, err = f.categories.TopicsByCategory(ctx, &f.alice, private.ID, "", store.TopicSortAsc, store.Page{})
		require.NoError(t, err)
	})

	t.Run("privileged users listing", func(t *testing.T) {
		users, err := f.categories.PrivilegedUsers(ctx, f.admin, private.ID)
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, "alice", users[0].Username)
		require.Equal(t, "read only", users[0].AccessLevel)

		require.NoError(t, f.categories.GrantAccess(ctx, f.admin, private.ID, "alice", true))

		users, err = f.categories.PrivilegedUsers(ctx, f.admin, private.ID)
		require.NoError(t, err)
		require.Equal(t, "read and write", users[0].AccessLevel)
	})
}

func TestTopicService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)

	general, err := f.categories.Create(ctx, f.admin, "general", domain.PrivacyNonPrivate)
	require.NoError(t, err)

	topic, err := f.topics.Create(ctx, f.alice, "Coffee machines", "Which grinder should the office buy?", general.ID)
	require.NoError(t, err)

	t.Run("create validates lengths", func(t *testing.T) {
		_, err := f.topics.Create(ctx, f.alice, "x", "Which grinder should the office buy?", general.ID)
		require.ErrorIs(t, err, ErrValidation)

		_, err = f.topics.Create(ctx, f.alice, "Coffee", "too short", general.ID)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("count", func(t *testing.T) {
		n, err := f.topics.Count(ctx, general.ID)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("search filters stop words", func(t *testing.T) {
		// "and"/"top" are stop words; only "coffee" should match.
		result, err := f.topics.Search(ctx, &f.alice, SearchOptions{Query: "and top Coffee"})
		require.NoError(t, err)
		require.Len(t, result.Topics, 1)

		result, err = f.topics.Search(ctx, &f.alice, SearchOptions{Query: "submarine"})
		require.NoError(t, err)
		require.Empty(t, result.Topics)
	})

	t.Run("edit by author", func(t *testing.T) {
		updated, err := f.topics.Edit(ctx, f.alice, topic.ID, "Espresso machines", "")
		require.NoError(t, err)
		require.Equal(t, "Espresso machines", updated.Title)
		require.Equal(t, topic.Text, updated.Text, "empty text keeps the old value")
	})

	t.Run("edit by stranger", func(t *testing.T) {
		_, err := f.topics.Edit(ctx, f.bob, topic.ID, "Hijacked", "")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("lock is admin only and idempotent-aware", func(t *testing.T) {
		_, err := f.topics.Lock(ctx, f.alice, topic.ID)
		require.ErrorIs(t, err, ErrForbidden)

		already, err := f.topics.Lock(ctx, f.admin, topic.ID)
		require.NoError(t, err)
		require.False(t, already)

		already, err = f.topics.Lock(ctx, f.admin, topic.ID)
		require.NoError(t, err)
		require.True(t, already)
	})

	t.Run("locked topic rejects edits", func(t *testing.T) {
		_, err := f.topics.Edit(ctx, f.alice, topic.ID, "New title", "")
		require.ErrorIs(t, err, ErrLocked)
	})

	t.Run("locked category rejects new topics", func(t *testing.T) {
		require.NoError(t, f.categories.Lock(ctx, f.admin, general.ID))

		_, err := f.topics.Create(ctx, f.alice, "Another one", "This category is closed for business.", general.ID)
		require.ErrorIs(t, err, ErrLocked)
	})
}

func TestTopicService_PrivateCategoryWriteAccess(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)

	private, err := f.categories.Create(ctx, f.admin, "staff-room", domain.PrivacyPrivate)
	require.NoError(t, err)

	require.NoError(t, f.categories.GrantAccess(ctx, f.admin, private.ID, "alice", false))

	t.Run("read-only grant cannot post", func(t *testing.T) {
		_, err := f.topics.Create(ctx, f.alice, "Staff notice", "The kitchen fridge will be cleaned on Friday.", private.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("write grant can post", func(t *testing.T) {
		require.NoError(t, f.categories.GrantAccess(ctx, f.admin, private.ID, "alice", true))

		_, err := f.topics.Create(ctx, f.alice, "Staff notice", "The kitchen fridge will be cleaned on Friday.", private.ID)
		require.NoError(t, err)
	})

	t.Run("revoked grant loses read access", func(t *testing.T) {
		require.NoError(t, f.categories.RevokeAccess(ctx, f.admin, private.ID, "alice"))

		_, err := f.categories.TopicsByCategory(ctx, &f.alice, private.ID, "", store.TopicSortAsc, store.Page{})
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestReplyService_VotesAndBest(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)

	general, err := f.categories.Create(ctx, f.admin, "general", domain.PrivacyNonPrivate)
	require.NoError(t, err)

	topic, err := f.topics.Create(ctx, f.alice, "Coffee machines", "Which grinder should the office buy?", general.ID)
	require.NoError(t, err)

	reply, err := f.replies.Create(ctx, f.bob, topic.ID, "The flat burr one, obviously.")
	require.NoError(t, err)

	t.Run("vote tallies", func(t *testing.T) {
		voted, err := f.replies.Vote(ctx, f.alice, reply.ID, domain.VoteUp)
		require.NoError(t, err)
		require.Equal(t, 1, voted.Upvotes)
		require.Equal(t, 0, voted.Downvotes)

		// Changing a vote replaces it rather than stacking.
		voted, err = f.replies.Vote(ctx, f.alice, reply.ID, domain.VoteDown)
		require.NoError(t, err)
		require.Equal(t, 0, voted.Upvotes)
		require.Equal(t, 1, voted.Downvotes)

		voted, err = f.replies.Vote(ctx, f.alice, reply.ID, domain.VoteRemove)
		require.NoError(t, err)
		require.Equal(t, 0, voted.Upvotes)
		require.Equal(t, 0, voted.Downvotes)

		// Removing again is a no-op, not an error.
		_, err = f.replies.Vote(ctx, f.alice, reply.ID, domain.VoteRemove)
		require.NoError(t, err)
	})

	t.Run("edit is author only", func(t *testing.T) {
		_, err := f.replies.Edit(ctx, f.alice, reply.ID, "Rewritten by someone else entirely.")
		require.ErrorIs(t, err, ErrForbidden)

		edited, err := f.replies.Edit(ctx, f.bob, reply.ID, "The conical burr one, on reflection.")
		require.NoError(t, err)
		require.Equal(t, "The conical burr one, on reflection.", edited.Content)
	})

	t.Run("best reply", func(t *testing.T) {
		_, err := f.replies.ChooseBest(ctx, f.bob, topic.ID, reply.ID)
		require.ErrorIs(t, err, ErrForbidden, "only the topic author chooses")

		best, err := f.replies.ChooseBest(ctx, f.alice, topic.ID, reply.ID)
		require.NoError(t, err)
		require.True(t, best.IsBest)

		second, err := f.replies.Create(ctx, f.bob, topic.ID, "Actually maybe the cheap one.")
		require.NoError(t, err)

		_, err = f.replies.ChooseBest(ctx, f.alice, topic.ID, second.ID)
		require.ErrorIs(t, err, ErrBestReplyExists)
	})

	t.Run("locked topic rejects replies", func(t *testing.T) {
		_, err := f.topics.Lock(ctx, f.admin, topic.ID)
		require.NoError(t, err)

		_, err = f.replies.Create(ctx, f.bob, topic.ID, "One more thought on grinders.")
		require.ErrorIs(t, err, ErrLocked)
	})
}

func TestMessageService_SendAndList(t *testing.T) {
	ctx := context.Background()
	f := newForumFixture(t)

	t.Run("unknown recipient sends nothing", func(t *testing.T) {
		_, err := f.messages.Send(ctx, f.alice, []string{"bob", "nobody"}, "Hello", "Hi there", "")
		require.ErrorIs(t, err, ErrUnknownUser)

		threads, err := f.messages.Conversations(ctx, f.bob, store.TopicSortAsc, store.Page{})
		require.NoError(t, err)
		require.Empty(t, threads)
	})

	t.Run("multi-recipient send is atomic and visible to all", func(t *testing.T) {
		msg, err := f.messages.Send(ctx, f.alice, []string{"bob", "admin"}, "Standup", "Moved to 10am", "")
		require.NoError(t, err)
		require.Equal(t, "Standup", msg.Subject)

		for _, user := range []domain.User{f.bob, f.admin} {
			threads, err := f.messages.Conversations(ctx, user, store.TopicSortAsc, store.Page{})
			require.NoError(t, err)
			require.Len(t, threads, 1)
			require.Equal(t, "alice", threads[0].With)
		}
	})

	t.Run("default subject", func(t *testing.T) {
		msg, err := f.messages.Send(ctx, f.bob, []string{"alice"}, "", "ok, see you then", "")
		require.NoError(t, err)
		require.Equal(t, domain.DefaultMessageSubject, msg.Subject)
	})

	t.Run("missing parent is dropped silently", func(t *testing.T) {
		msg, err := f.messages.Send(ctx, f.bob, []string{"alice"}, "Standup", "replying to nothing", "no-such-id")
		require.NoError(t, err)
		require.Empty(t, msg.ParentID)
	})

	t.Run("conversations with a user split by subject", func(t *testing.T) {
		threads, err := f.messages.ConversationsWith(ctx, f.alice, []string{"bob"})
		require.NoError(t, err)
		require.Len(t, threads, 2)

		subjects := []string{threads[0].Subject, threads[1].Subject}
		require.Contains(t, subjects, domain.DefaultMessageSubject)
		require.Contains(t, subjects, "Standup")
	})

	t.Run("chat feed since", func(t *testing.T) {
		msgs, err := f.messages.ChatSince(ctx, f.alice, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		require.Equal(t, "bob", msgs[0].Author)

		msgs, err = f.messages.ChatSince(ctx, f.alice, time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.Empty(t, msgs)
	})
}
