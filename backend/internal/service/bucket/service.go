package bucket

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"weekend-at-joes/backend/internal/apperr"
	domain "weekend-at-joes/backend/internal/domain/bucket"
	"weekend-at-joes/backend/internal/domain/user"
	appLogger "weekend-at-joes/backend/internal/infra/logger"
	"weekend-at-joes/backend/internal/infra/metrics"
	"weekend-at-joes/backend/internal/repository"
	"weekend-at-joes/pkg/ident"

	"go.uber.org/zap"
)

var (
	ErrNotOwner          = fmt.Errorf("%w: bucket owner required", apperr.ErrForbidden)
	ErrNotParticipant    = fmt.Errorf("%w: approved bucket participant required", apperr.ErrForbidden)
	ErrNotAuthor         = fmt.Errorf("%w: not the author", apperr.ErrForbidden)
	ErrCannotRemoveOwner = fmt.Errorf("%w: the bucket owner cannot be removed", apperr.ErrBadRequest)
	ErrEmptyName         = fmt.Errorf("%w: bucket name is required", apperr.ErrBadRequest)
	ErrEmptyQuestion     = fmt.Errorf("%w: question text is required", apperr.ErrBadRequest)
)

// Service 处理 bucket 成员关系以及其中的问答。
//
// 权限分三级：所有者（审批、移除、上下架问题）、已批准的参与者（提问、回答、查看）、
// 其他登录用户（只能申请加入）。
type Service struct {
	buckets   *repository.BucketRepository
	questions *repository.QuestionRepository
	answers   *repository.AnswerRepository
	logger    *zap.SugaredLogger
}

func NewService(buckets *repository.BucketRepository, questions *repository.QuestionRepository, answers *repository.AnswerRepository) *Service {
	return &Service{
		buckets:   buckets,
		questions: questions,
		answers:   answers,
		logger:    appLogger.Named("bucket.service"),
	}
}

// Create 创建 bucket，创建者成为已批准的所有者。
func (s *Service) Create(ctx context.Context, requester user.Principal, name string, public bool) (domain.Bucket, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Bucket{}, ErrEmptyName
	}
	b, err := s.buckets.CreateWithOwner(ctx, domain.Bucket{
		UUID:       ident.New[ident.BucketUUID](),
		BucketName: name,
		IsPublic:   public,
	}, requester.UUID)
	if err != nil {
		return domain.Bucket{}, fmt.Errorf("create bucket: %w", err)
	}
	s.logger.Infow("bucket created", "bucket_uuid", b.UUID, "owner", requester.UserName)
	return b, nil
}

func (s *Service) Get(ctx context.Context, id ident.BucketUUID) (domain.Bucket, error) {
	b, err := s.buckets.Get(ctx, id)
	if err != nil {
		return domain.Bucket{}, fmt.Errorf("get bucket: %w", err)
	}
	return b, nil
}

func (s *Service) Public(ctx context.Context) ([]domain.Bucket, error) {
	buckets, err := s.buckets.Public(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public buckets: %w", err)
	}
	return buckets, nil
}

// Mine 返回请求者已被批准加入的 bucket。
func (s *Service) Mine(ctx context.Context, requester user.Principal) ([]domain.Bucket, error) {
	buckets, err := s.buckets.ForUser(ctx, requester.UUID)
	if err != nil {
		return nil, fmt.Errorf("list user buckets: %w", err)
	}
	return buckets, nil
}

// RequestJoin 登记一条待审批的加入请求，重复申请返回 409。
func (s *Service) RequestJoin(ctx context.Context, requester user.Principal, id ident.BucketUUID) error {
	if _, err := s.buckets.Get(ctx, id); err != nil {
		return fmt.Errorf("get bucket: %w", err)
	}
	_, err := s.buckets.AddUser(ctx, domain.BucketUser{BucketUUID: id, UserUUID: requester.UUID})
	if err != nil {
		return fmt.Errorf("request join: %w", err)
	}
	return nil
}

// IsOwner 非成员或 bucket 不存在均为 false。
func (s *Service) IsOwner(ctx context.Context, requester user.Principal, id ident.BucketUUID) (bool, error) {
	ok, err := s.buckets.IsOwner(ctx, id, requester.UUID)
	if err != nil {
		return false, fmt.Errorf("check owner: %w", err)
	}
	return ok, nil
}

// Participants 返回已批准的参与者，仅参与者可见。
func (s *Service) Participants(ctx context.Context, requester user.Principal, id ident.BucketUUID) ([]user.User, error) {
	if err := s.requireParticipant(ctx, requester, id); err != nil {
		return nil, err
	}
	users, err := s.buckets.Users(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return users, nil
}

// Pending 返回待审批的加入请求，仅所有者可见。
func (s *Service) Pending(ctx context.Context, requester user.Principal, id ident.BucketUUID) ([]user.User, error) {
	if err := s.requireOwner(ctx, requester, id); err != nil {
		return nil, err
	}
	users, err := s.buckets.Users(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return users, nil
}

func (s *Service) Approve(ctx context.Context, requester user.Principal, id ident.BucketUUID, target ident.UserUUID) error {
	if err := s.requireOwner(ctx, requester, id); err != nil {
		return err
	}
	if err := s.buckets.Approve(ctx, id, target); err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	return nil
}

// RemoveUser 移除参与者或拒绝申请。所有者不能移除自己。
func (s *Service) RemoveUser(ctx context.Context, requester user.Principal, id ident.BucketUUID, target ident.UserUUID) error {
	if err := s.requireOwner(ctx, requester, id); err != nil {
		return err
	}
	if target == requester.UUID {
		return ErrCannotRemoveOwner
	}
	if err := s.buckets.RemoveUser(ctx, id, target); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	s.logger.Infow("bucket user removed", "bucket_uuid", id, "user_uuid", target)
	return nil
}

// CreateQuestion 参与者提问，新问题默认在台上。
func (s *Service) CreateQuestion(ctx context.Context, requester user.Principal, bucketID ident.BucketUUID, text string) (domain.QuestionData, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.QuestionData{}, ErrEmptyQuestion
	}
	if err := s.requireParticipant(ctx, requester, bucketID); err != nil {
		return domain.QuestionData{}, err
	}
	q, err := s.questions.Create(ctx, domain.Question{
		UUID:         ident.New[ident.QuestionUUID](),
		BucketUUID:   bucketID,
		AuthorUUID:   requester.UUID,
		QuestionText: text,
		OnFloor:      true,
	})
	if err != nil {
		return domain.QuestionData{}, fmt.Errorf("create question: %w", err)
	}
	metrics.RecordEvent(metrics.EventQuestionCreated)
	return s.questionData(ctx, q)
}

// Questions 列出 bucket 内全部问题及回答。
func (s *Service) Questions(ctx context.Context, requester user.Principal, bucketID ident.BucketUUID) ([]domain.QuestionData, error) {
	if err := s.requireParticipant(ctx, requester, bucketID); err != nil {
		return nil, err
	}
	questions, err := s.questions.InBucket(ctx, bucketID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// RandomQuestion 从台上的问题里随机取一个，没有时返回 404。
func (s *Service) RandomQuestion(ctx context.Context, requester user.Principal, bucketID ident.BucketUUID) (domain.QuestionData, error) {
	if err := s.requireParticipant(ctx, requester, bucketID); err != nil {
		return domain.QuestionData{}, err
	}
	q, err := s.questions.RandomOnFloor(ctx, bucketID)
	if err != nil {
		return domain.QuestionData{}, fmt.Errorf("random question: %w", err)
	}
	return q, nil
}

// SetOnFloor 上架或下架问题，仅 bucket 所有者可用。
func (s *Service) SetOnFloor(ctx context.Context, requester user.Principal, id ident.QuestionUUID, onFloor bool) (domain.QuestionData, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return domain.QuestionData{}, ErrNotOwner
		}
		return domain.QuestionData{}, fmt.Errorf("load question: %w", err)
	}
	if err := s.requireOwner(ctx, requester, q.BucketUUID); err != nil {
		return domain.QuestionData{}, err
	}
	updated, err := s.questions.Update(ctx, domain.QuestionChangeset{UUID: id, OnFloor: &onFloor})
	if err != nil {
		return domain.QuestionData{}, fmt.Errorf("update question: %w", err)
	}
	return s.questionData(ctx, updated)
}

// DeleteQuestion 仅作者可删，回答随之级联删除。
func (s *Service) DeleteQuestion(ctx context.Context, requester user.Principal, id ident.QuestionUUID) error {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrNotAuthor
		}
		return fmt.Errorf("load question: %w", err)
	}
	if q.AuthorUUID != requester.UUID {
		return ErrNotAuthor
	}
	if _, err := s.questions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// CreateAnswer 参与者回答问题，text 为空表示只表态。
func (s *Service) CreateAnswer(ctx context.Context, requester user.Principal, questionID ident.QuestionUUID, text *string) (domain.AnswerData, error) {
	q, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return domain.AnswerData{}, fmt.Errorf("load question: %w", err)
	}
	if err := s.requireParticipant(ctx, requester, q.BucketUUID); err != nil {
		return domain.AnswerData{}, err
	}
	a, err := s.answers.Create(ctx, domain.Answer{
		UUID:         ident.New[ident.AnswerUUID](),
		QuestionUUID: questionID,
		AuthorUUID:   requester.UUID,
		AnswerText:   text,
	})
	if err != nil {
		return domain.AnswerData{}, fmt.Errorf("create answer: %w", err)
	}
	metrics.RecordEvent(metrics.EventAnswerCreated)
	data, err := s.answers.GetData(ctx, a.UUID)
	if err != nil {
		return domain.AnswerData{}, fmt.Errorf("reload answer: %w", err)
	}
	return data, nil
}

// GetAnswer 返回回答与作者，仅所在 bucket 的参与者可见。
func (s *Service) GetAnswer(ctx context.Context, requester user.Principal, id ident.AnswerUUID) (domain.AnswerData, error) {
	data, err := s.answers.GetData(ctx, id)
	if err != nil {
		return domain.AnswerData{}, fmt.Errorf("get answer: %w", err)
	}
	q, err := s.questions.Get(ctx, data.Answer.QuestionUUID)
	if err != nil {
		return domain.AnswerData{}, fmt.Errorf("load question: %w", err)
	}
	if err := s.requireParticipant(ctx, requester, q.BucketUUID); err != nil {
		return domain.AnswerData{}, err
	}
	return data, nil
}

// DeleteAnswer 仅作者可删。
func (s *Service) DeleteAnswer(ctx context.Context, requester user.Principal, id ident.AnswerUUID) error {
	a, err := s.answers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrNotAuthor
		}
		return fmt.Errorf("load answer: %w", err)
	}
	if a.AuthorUUID != requester.UUID {
		return ErrNotAuthor
	}
	if _, err := s.answers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	return nil
}

func (s *Service) questionData(ctx context.Context, q domain.Question) (domain.QuestionData, error) {
	all, err := s.questions.InBucket(ctx, q.BucketUUID)
	if err != nil {
		return domain.QuestionData{}, fmt.Errorf("reload question: %w", err)
	}
	for _, item := range all {
		if item.Question.UUID == q.UUID {
			return item, nil
		}
	}
	return domain.QuestionData{}, apperr.NotFound("question %s", q.UUID)
}

// requireOwner 失败一律 403，不区分 bucket 不存在。
func (s *Service) requireOwner(ctx context.Context, requester user.Principal, id ident.BucketUUID) error {
	ok, err := s.buckets.IsOwner(ctx, id, requester.UUID)
	if err != nil {
		return fmt.Errorf("check owner: %w", err)
	}
	if !ok {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) requireParticipant(ctx context.Context, requester user.Principal, id ident.BucketUUID) error {
	membership, err := s.buckets.Membership(ctx, id, requester.UUID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrNotParticipant
		}
		return fmt.Errorf("check membership: %w", err)
	}
	if !membership.Approved {
		return ErrNotParticipant
	}
	return nil
}
