package repository

import (
	"context"
	"testing"

	"weekend-at-joes/backend/internal/apperr"
	"weekend-at-joes/backend/internal/domain/bucket"
	"weekend-at-joes/pkg/ident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketMembershipLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewBucketRepository(db)
	owner := seedUser(t, db, "owner")
	guest := seedUser(t, db, "guest")

	b, err := repo.CreateWithOwner(ctx, bucket.Bucket{UUID: ident.New[ident.BucketUUID](), BucketName: "Trivia", IsPublic: true}, owner.UUID)
	require.NoError(t, err)

	isOwner, err := repo.IsOwner(ctx, b.UUID, owner.UUID)
	require.NoError(t, err)
	assert.True(t, isOwner)

	isOwner, err = repo.IsOwner(ctx, b.UUID, guest.UUID)
	require.NoError(t, err)
	assert.False(t, isOwner)

	_, err = repo.AddUser(ctx, bucket.BucketUser{BucketUUID: b.UUID, UserUUID: guest.UUID})
	require.NoError(t, err)
	_, err = repo.AddUser(ctx, bucket.BucketUser{BucketUUID: b.UUID, UserUUID: guest.UUID})
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)

	pending, err := repo.Users(ctx, b.UUID, false)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, guest.UUID, pending[0].UUID)

	require.NoError(t, repo.Approve(ctx, b.UUID, guest.UUID))
	approved, err := repo.Users(ctx, b.UUID, true)
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	mine, err := repo.ForUser(ctx, guest.UUID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b.UUID, mine[0].UUID)

	require.NoError(t, repo.RemoveUser(ctx, b.UUID, guest.UUID))
	assert.ErrorIs(t, repo.RemoveUser(ctx, b.UUID, guest.UUID), apperr.ErrNotFound)
	assert.ErrorIs(t, repo.Approve(ctx, b.UUID, guest.UUID), apperr.ErrNotFound)
}

func TestQuestionsCarryAnswers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")
	b, err := NewBucketRepository(db).CreateWithOwner(ctx, bucket.Bucket{UUID: ident.New[ident.BucketUUID](), BucketName: "Q"}, owner.UUID)
	require.NoError(t, err)

	questions := NewQuestionRepository(db)
	q, err := questions.Create(ctx, bucket.Question{
		UUID:         ident.New[ident.QuestionUUID](),
		BucketUUID:   b.UUID,
		AuthorUUID:   owner.UUID,
		QuestionText: "Why?",
		OnFloor:      true,
	})
	require.NoError(t, err)

	answers := NewAnswerRepository(db)
	a, err := answers.Create(ctx, bucket.Answer{
		UUID:         ident.New[ident.AnswerUUID](),
		QuestionUUID: q.UUID,
		AuthorUUID:   owner.UUID,
		AnswerText:   ptr("Because."),
	})
	require.NoError(t, err)

	data, err := answers.GetData(ctx, a.UUID)
	require.NoError(t, err)
	assert.Equal(t, "owner", data.User.UserName)

	list, err := questions.InBucket(ctx, b.UUID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Answers, 1)
	assert.Equal(t, "Because.", *list[0].Answers[0].Answer.AnswerText)

	random, err := questions.RandomOnFloor(ctx, b.UUID)
	require.NoError(t, err)
	assert.Equal(t, q.UUID, random.Question.UUID)

	_, err = questions.Update(ctx, bucket.QuestionChangeset{UUID: q.UUID, OnFloor: ptr(false)})
	require.NoError(t, err)
	_, err = questions.RandomOnFloor(ctx, b.UUID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
