package wire

import "weekend-at-joes/pkg/ident"

type BucketResponse struct {
	UUID       ident.BucketUUID `json:"uuid"`
	BucketName string           `json:"bucket_name"`
	IsPublic   bool             `json:"is_public"`
}

type NewBucketRequest struct {
	BucketName string `json:"bucket_name" binding:"required,max=128"`
	IsPublic   bool   `json:"is_public"`
}

type QuestionResponse struct {
	UUID         ident.QuestionUUID `json:"uuid"`
	BucketUUID   ident.BucketUUID   `json:"bucket_uuid"`
	Author       UserResponse       `json:"author"`
	QuestionText string             `json:"question_text"`
	OnFloor      bool               `json:"on_floor"`
	Answers      []AnswerResponse   `json:"answers"`
}

type NewQuestionRequest struct {
	BucketUUID   ident.BucketUUID `json:"bucket_uuid" binding:"required"`
	QuestionText string           `json:"question_text" binding:"required"`
}

type AnswerResponse struct {
	UUID         ident.AnswerUUID   `json:"uuid"`
	QuestionUUID ident.QuestionUUID `json:"question_uuid"`
	AnswerText   *string            `json:"answer_text"`
	Author       UserResponse       `json:"author"`
}

type NewAnswerRequest struct {
	QuestionUUID ident.QuestionUUID `json:"question_uuid" binding:"required"`
	AnswerText   *string            `json:"answer_text"`
}
