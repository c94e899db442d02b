package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/anonto42/travelsocial/backend/internal/engagement"
	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/middleware"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/anonto42/travelsocial/backend/internal/testutil"
	"github.com/anonto42/travelsocial/backend/internal/testutil/fakes"
	"github.com/anonto42/travelsocial/backend/pkg/logger"
	"github.com/anonto42/travelsocial/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	posts *fakes.PostStore
	bus   *fakes.Publisher

	users    *repositories.PostgresUserRepository
	follows  *repositories.PostgresFollowRepository
	comments *repositories.PostgresCommentRepository
	notifs   repositories.NotificationRepository
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	return &fixture{
		db:       db,
		posts:    fakes.NewPostStore(),
		bus:      &fakes.Publisher{},
		users:    repositories.NewPostgresUserRepository(db),
		follows:  repositories.NewPostgresFollowRepository(db),
		comments: repositories.NewPostgresCommentRepository(db),
		notifs:   repositories.NewPostgresNotificationRepository(db),
	}
}

// serve runs one request through routes registered by register, acting as userID.
func serve(t *testing.T, register func(g *echo.Group), userID uint, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = validators.NewValidator()
	g := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != 0 {
				c.Set(middleware.UserIDKey, userID)
			}
			return next(c)
		}
	})
	register(g)

	req := httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func TestFollowUser(t *testing.T) {
	f := newFixture(t)
	users := testutil.SeedUsers(t, f.db, models.User{Username: "a"}, models.User{Username: "b"})
	a, b := users[0].ID, users[1].ID
	routes := NewFollowHandler(f.follows, f.users, f.bus).RegisterFollowRoutes

	rec := serve(t, routes, a, http.MethodPost, "/users/"+id(a)+"/follow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self follow")

	rec = serve(t, routes, a, http.MethodPost, "/users/999/follow", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown target")

	rec = serve(t, routes, a, http.MethodPost, "/users/"+id(b)+"/follow", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, routes, a, http.MethodPost, "/users/"+id(b)+"/follow", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "repeat follow")

	published := f.bus.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.NewFollower, published[0].Kind)
	assert.Equal(t, a, published[0].ActorID)
	assert.Equal(t, b, published[0].SubjectOwnerID)

	rec = serve(t, routes, a, http.MethodDelete, "/users/"+id(b)+"/follow", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(t, routes, a, http.MethodDelete, "/users/"+id(b)+"/follow", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowUser_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	routes := NewFollowHandler(f.follows, f.users, f.bus).RegisterFollowRoutes

	rec := serve(t, routes, 0, http.MethodPost, "/users/1/follow", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.bus.Events())
}

func TestCreateComment_ParentRules(t *testing.T) {
	f := newFixture(t)
	users := testutil.SeedUsers(t, f.db, models.User{Username: "owner"}, models.User{Username: "c"})
	owner, commenter := users[0].ID, users[1].ID
	post := f.posts.Seed(models.Post{UserID: owner, Content: "x"})
	other := f.posts.Seed(models.Post{UserID: owner, Content: "y"})

	tree := engagement.NewTreeBuilder(f.comments, f.users, repositories.NewPostgresReactionRepository(f.db))
	routes := NewCommentHandler(f.comments, f.posts, tree, f.bus, logger.Discard()).RegisterCommentRoutes

	rec := serve(t, routes, commenter, http.MethodPost, "/posts/"+post+"/comments", `{"content":"top"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	top := uint(1)

	rec = serve(t, routes, commenter, http.MethodPost, "/posts/"+post+"/comments", `{"content":"reply","parent_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	tests := []struct {
		name   string
		post   string
		body   string
		status int
	}{
		{"parent on another post", other, `{"content":"r","parent_id":1}`, http.StatusBadRequest},
		{"reply to a reply", post, `{"content":"r","parent_id":2}`, http.StatusBadRequest},
		{"missing parent", post, `{"content":"r","parent_id":42}`, http.StatusNotFound},
		{"empty content", post, `{"content":""}`, http.StatusBadRequest},
		{"unknown post", "000000000000000000000000", `{"content":"r"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, routes, commenter, http.MethodPost, "/posts/"+tt.post+"/comments", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	published := f.bus.Events()
	require.Len(t, published, 2)
	assert.Equal(t, events.PostCommented, published[0].Kind)
	assert.Equal(t, owner, published[0].SubjectOwnerID)
	assert.Equal(t, events.CommentReplied, published[1].Kind)
	assert.Equal(t, commenter, published[1].SubjectOwnerID)
	reply := published[1].Payload.(events.CommentRepliedPayload)
	assert.Equal(t, top, reply.CommentID)
	assert.Equal(t, uint(2), reply.ReplyID)

	stored, err := f.posts.GetPostByID(t.Context(), post)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CommentsCount)
}

func TestReactToPost_PublishesPrevious(t *testing.T) {
	f := newFixture(t)
	users := testutil.SeedUsers(t, f.db, models.User{Username: "owner"}, models.User{Username: "fan"})
	owner, fan := users[0].ID, users[1].ID
	post := f.posts.Seed(models.Post{UserID: owner, Kind: models.PostKindMiniBlog, Content: "x"})

	reactions := engagement.NewReactionService(repositories.NewPostgresReactionRepository(f.db))
	routes := NewReactionHandler(reactions, f.posts, f.comments, f.bus).RegisterReactionRoutes

	for _, body := range []string{`{"reaction_id":2}`, `{"reaction_id":3}`, `{"reaction_id":1}`} {
		rec := serve(t, routes, fan, http.MethodPut, "/posts/"+post+"/reactions", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := serve(t, routes, fan, http.MethodPut, "/posts/"+post+"/reactions", `{"reaction_id":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	published := f.bus.Events()
	require.Len(t, published, 3)
	want := [][2]models.ReactionKind{
		{models.ReactionLike, models.ReactionNone},
		{models.ReactionLove, models.ReactionLike},
		{models.ReactionNone, models.ReactionLove},
	}
	for i, env := range published {
		p := env.Payload.(events.PostLikedPayload)
		assert.Equal(t, want[i][0], p.Reaction, "event %d", i)
		assert.Equal(t, want[i][1], p.Previous, "event %d", i)
		assert.Equal(t, models.PostKindMiniBlog, p.PostKind)
	}

	rec = serve(t, routes, fan, http.MethodGet, "/posts/"+post+"/reactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestInviteToGroup(t *testing.T) {
	f := newFixture(t)
	users := testutil.SeedUsers(t, f.db, models.User{Username: "host"}, models.User{Username: "guest"})
	host, guest := users[0].ID, users[1].ID
	routes := NewGroupHandler(f.users, f.bus).RegisterGroupRoutes

	rec := serve(t, routes, host, http.MethodPost, "/groups/7/invitations", `{"invitee_id":`+id(guest)+`,"group_name":"Alps 2026"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = serve(t, routes, host, http.MethodPost, "/groups/7/invitations", `{"invitee_id":`+id(host)+`,"group_name":"Alps 2026"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	published := f.bus.Events()
	require.Len(t, published, 1)
	p := published[0].Payload.(events.GroupInvitationPayload)
	assert.Equal(t, uint(7), p.GroupID)
	assert.Equal(t, "Alps 2026", p.GroupName)
	assert.Equal(t, guest, published[0].SubjectOwnerID)
}

func TestNotificationRoutes_ScopedToRecipient(t *testing.T) {
	f := newFixture(t)
	users := testutil.SeedUsers(t, f.db, models.User{Username: "a"}, models.User{Username: "b"})
	a, b := users[0].ID, users[1].ID
	require.NoError(t, f.notifs.CreateNotifications(t.Context(), []models.Notification{
		{RecipientID: a, Kind: models.KindNewFollower, Data: []byte(`{"follower_id":2}`)},
	}, 10))
	routes := NewNotificationHandler(f.notifs).RegisterNotificationRoutes

	rec := serve(t, routes, b, http.MethodPut, "/notifications/1/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "other recipient")
	rec = serve(t, routes, b, http.MethodDelete, "/notifications/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "other recipient")

	rec = serve(t, routes, a, http.MethodPut, "/notifications/1/read", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_read":true`)

	rec = serve(t, routes, a, http.MethodGet, "/notifications?sort=bogus:desc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, routes, a, http.MethodDelete, "/notifications/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
