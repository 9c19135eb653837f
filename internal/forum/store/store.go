package store

import (
	"context"
	"errors"
	"time"

	"github.com/parleyhq/parley/internal/forum/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// TopicSort orders topic listings by creation time.
type TopicSort string

const (
	TopicSortNone TopicSort = ""
	TopicSortAsc  TopicSort = "asc"
	TopicSortDesc TopicSort = "desc"
)

// Page is a limit/offset pair. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and a
// transaction scope for the multi-step operations that must be atomic
// (multi-recipient message sends, best-reply switches, vote upserts).
type Store interface {
	Users() Users
	Categories() Categories
	Topics() Topics
	Replies() Replies
	Votes() Votes
	Messages() Messages

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back if fn errors
	// and committing otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used by login and by session validation
	// (token subjects are usernames).
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// SetAdmin flips the admin flag for a user.
	SetAdmin(ctx context.Context, userID string, isAdmin bool) error
}

type Categories interface {
	// GetCategoryByID returns a category by id.
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)

	// ListCategories returns every category matching the optional name
	// filter, regardless of privacy. Admin view.
	ListCategories(ctx context.Context, nameFilter string, page Page) ([]domain.Category, error)

	// ListVisibleCategories returns non-private categories plus the private
	// ones the user holds a grant for. An empty userID lists only the
	// non-private set (guest view).
	ListVisibleCategories(ctx context.Context, userID, nameFilter string, page Page) ([]domain.Category, error)

	// CreateCategory inserts a new category. Duplicate names return
	// ErrAlreadyExists.
	CreateCategory(ctx context.Context, c domain.Category) error

	// SetPrivacyStatus switches a category between private and non_private.
	SetPrivacyStatus(ctx context.Context, categoryID, privacy string) error

	// SetAccessStatus locks or unlocks a category for new topics.
	SetAccessStatus(ctx context.Context, categoryID, access string) error

	// GetAccess returns the grant a user holds on a category, if any.
	GetAccess(ctx context.Context, categoryID, userID string) (domain.CategoryAccess, error)

	// UpsertAccess grants or updates a user's access to a private category.
	UpsertAccess(ctx context.Context, a domain.CategoryAccess) error

	// RevokeAccess removes a grant. Missing grants return ErrNotFound.
	RevokeAccess(ctx context.Context, categoryID, userID string) error

	// ListPrivilegedUsers lists the users holding grants on a category.
	ListPrivilegedUsers(ctx context.Context, categoryID string) ([]domain.PrivilegedUser, error)
}

type Topics interface {
	// GetTopicByID returns a topic by id.
	GetTopicByID(ctx context.Context, id string) (domain.Topic, error)

	// ListTopicsByCategory returns topics in a category matching the
	// optional title filter.
	ListTopicsByCategory(ctx context.Context, categoryID, titleFilter string, sort TopicSort, page Page) ([]domain.Topic, error)

	// SearchTopics returns topics whose title or text contains every term.
	// Results are restricted to categories visible to userID (empty for
	// guests, which sees only non-private categories); adminView lifts the
	// restriction.
	SearchTopics(ctx context.Context, terms []string, userID string, adminView bool, sort TopicSort, page Page) ([]domain.Topic, error)

	// CountTopicsByCategory returns the number of topics in a category.
	CountTopicsByCategory(ctx context.Context, categoryID string) (int, error)

	// CreateTopic inserts a new topic.
	CreateTopic(ctx context.Context, t domain.Topic) error

	// UpdateTopic rewrites a topic's title and text.
	UpdateTopic(ctx context.Context, topicID, title, text string) error

	// LockTopic marks a topic as locked. Returns the previous locked state
	// so callers can report an already-locked topic.
	LockTopic(ctx context.Context, topicID string) (alreadyLocked bool, err error)
}

type Replies interface {
	// GetReplyByID returns a reply with its vote tallies.
	GetReplyByID(ctx context.Context, id string) (domain.Reply, error)

	// ListRepliesByTopic returns a topic's replies with vote tallies,
	// oldest first.
	ListRepliesByTopic(ctx context.Context, topicID string) ([]domain.Reply, error)

	// CreateReply inserts a new reply.
	CreateReply(ctx context.Context, r domain.Reply) error

	// UpdateReplyContent rewrites a reply's content.
	UpdateReplyContent(ctx context.Context, replyID, content string) error

	// HasBestReply reports whether a topic already has a best reply.
	HasBestReply(ctx context.Context, topicID string) (bool, error)

	// MarkBestReply flags a reply as the topic's best answer.
	MarkBestReply(ctx context.Context, replyID string) error
}

type Votes interface {
	// UpsertVote records or replaces a user's vote on a reply.
	UpsertVote(ctx context.Context, replyID, userID string, vote domain.Vote) error

	// DeleteVote removes a user's vote. Missing votes return ErrNotFound.
	DeleteVote(ctx context.Context, replyID, userID string) error
}

type Messages interface {
	// CreateMessage inserts a message row. Recipients are added separately
	// so multi-recipient sends can share one transaction.
	CreateMessage(ctx context.Context, m domain.Message) error

	// AddRecipient links a message to one recipient.
	AddRecipient(ctx context.Context, messageID, userID string) error

	// MessageExists reports whether a message id exists (parent checks).
	MessageExists(ctx context.Context, messageID string) (bool, error)

	// ListConversations returns every message sent or received by the user,
	// resolved to author/recipient usernames, newest or oldest first.
	ListConversations(ctx context.Context, userID string, sort TopicSort, page Page) ([]domain.ConversationMessage, error)

	// ListConversationWith returns the messages exchanged between the user
	// and the named counterparties, oldest first.
	ListConversationWith(ctx context.Context, userID string, counterpartyIDs []string) ([]domain.ConversationMessage, error)

	// ListReceivedSince returns messages received by the user after the
	// given instant, oldest first.
	ListReceivedSince(ctx context.Context, userID string, since time.Time) ([]domain.ConversationMessage, error)
}
