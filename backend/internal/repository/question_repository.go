package repository

import (
	"context"
	"math/rand/v2"

	"weekend-at-joes/backend/internal/domain/bucket"
	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
)

// QuestionRepository 负责问题及其回答的组合查询。
type QuestionRepository struct {
	db *gorm.DB
	crud[bucket.Question, ident.QuestionUUID]
}

var _ Repository[bucket.Question, ident.QuestionUUID, bucket.QuestionChangeset] = (*QuestionRepository)(nil)

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db, crud: newCrud[bucket.Question, ident.QuestionUUID](db, "question")}
}

func (r *QuestionRepository) Get(ctx context.Context, id ident.QuestionUUID) (bucket.Question, error) {
	return r.get(ctx, id)
}

func (r *QuestionRepository) Create(ctx context.Context, q bucket.Question) (bucket.Question, error) {
	return r.create(ctx, q)
}

func (r *QuestionRepository) Update(ctx context.Context, cs bucket.QuestionChangeset) (bucket.Question, error) {
	columns := map[string]any{}
	if cs.QuestionText != nil {
		columns["question_text"] = *cs.QuestionText
	}
	if cs.OnFloor != nil {
		columns["on_floor"] = *cs.OnFloor
	}
	return r.update(ctx, cs.UUID, columns)
}

func (r *QuestionRepository) Delete(ctx context.Context, id ident.QuestionUUID) (bucket.Question, error) {
	return r.delete(ctx, id)
}

// InBucket 返回 bucket 中全部问题，附带作者与回答。
func (r *QuestionRepository) InBucket(ctx context.Context, bucketID ident.BucketUUID) ([]bucket.QuestionData, error) {
	var questions []bucket.Question
	err := r.db.WithContext(ctx).
		InnerJoins("Author").
		Where("questions.bucket_uuid = ?", bucketID).
		Order("questions.uuid ASC").
		Find(&questions).Error
	if err != nil {
		return nil, translate("list questions", err)
	}
	return r.withAnswers(ctx, questions)
}

// RandomOnFloor 随机抽取一个 OnFloor 的问题；先计数再按随机偏移取一行，
// 避免依赖各数据库不同的随机排序函数。
func (r *QuestionRepository) RandomOnFloor(ctx context.Context, bucketID ident.BucketUUID) (bucket.QuestionData, error) {
	base := r.db.Model(&bucket.Question{}).
		Where("questions.bucket_uuid = ? AND questions.on_floor = ?", bucketID, true)

	var total int64
	if err := base.WithContext(ctx).Count(&total).Error; err != nil {
		return bucket.QuestionData{}, translate("count floor questions", err)
	}
	if total == 0 {
		return bucket.QuestionData{}, translate("random question", gorm.ErrRecordNotFound)
	}

	var q bucket.Question
	err := base.WithContext(ctx).
		InnerJoins("Author").
		Order("questions.uuid ASC").
		Offset(rand.IntN(int(total))).
		Limit(1).
		Find(&q).Error
	if err != nil {
		return bucket.QuestionData{}, translate("random question", err)
	}
	if q.UUID.IsZero() {
		// 计数与取数之间有并发删除。
		return bucket.QuestionData{}, translate("random question", gorm.ErrRecordNotFound)
	}
	data, err := r.withAnswers(ctx, []bucket.Question{q})
	if err != nil {
		return bucket.QuestionData{}, err
	}
	return data[0], nil
}

func (r *QuestionRepository) withAnswers(ctx context.Context, questions []bucket.Question) ([]bucket.QuestionData, error) {
	result := make([]bucket.QuestionData, 0, len(questions))
	if len(questions) == 0 {
		return result, nil
	}
	ids := make([]ident.QuestionUUID, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.UUID)
	}

	var answers []bucket.Answer
	err := r.db.WithContext(ctx).
		InnerJoins("Author").
		Where("answers.question_uuid IN ?", ids).
		Order("answers.uuid ASC").
		Find(&answers).Error
	if err != nil {
		return nil, translate("list answers", err)
	}

	byQuestion := make(map[ident.QuestionUUID][]bucket.AnswerData, len(questions))
	for _, a := range answers {
		byQuestion[a.QuestionUUID] = append(byQuestion[a.QuestionUUID], bucket.AnswerData{Answer: a, User: a.Author})
	}
	for _, q := range questions {
		result = append(result, bucket.QuestionData{
			Question: q,
			User:     q.Author,
			Answers:  append([]bucket.AnswerData{}, byQuestion[q.UUID]...),
		})
	}
	return result, nil
}

// AnswerRepository 负责回答的读写。
type AnswerRepository struct {
	db *gorm.DB
	crud[bucket.Answer, ident.AnswerUUID]
}

// AnswerChangeset 预留给泛型接口；回答创建后不可修改。
type AnswerChangeset struct {
	UUID ident.AnswerUUID
}

var _ Repository[bucket.Answer, ident.AnswerUUID, AnswerChangeset] = (*AnswerRepository)(nil)

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db, crud: newCrud[bucket.Answer, ident.AnswerUUID](db, "answer")}
}

func (r *AnswerRepository) Get(ctx context.Context, id ident.AnswerUUID) (bucket.Answer, error) {
	return r.get(ctx, id)
}

func (r *AnswerRepository) Create(ctx context.Context, a bucket.Answer) (bucket.Answer, error) {
	return r.create(ctx, a)
}

func (r *AnswerRepository) Update(context.Context, AnswerChangeset) (bucket.Answer, error) {
	return bucket.Answer{}, unsupported("update", "answer")
}

func (r *AnswerRepository) Delete(ctx context.Context, id ident.AnswerUUID) (bucket.Answer, error) {
	return r.delete(ctx, id)
}

// GetData 返回回答与作者。
func (r *AnswerRepository) GetData(ctx context.Context, id ident.AnswerUUID) (bucket.AnswerData, error) {
	var a bucket.Answer
	err := r.db.WithContext(ctx).InnerJoins("Author").Where("answers.uuid = ?", id).First(&a).Error
	if err != nil {
		return bucket.AnswerData{}, translate("get answer", err)
	}
	return bucket.AnswerData{Answer: a, User: a.Author}, nil
}
