package handler

import (
	"unicode/utf8"

	"weekend-at-joes/backend/internal/domain/article"
	"weekend-at-joes/backend/internal/domain/bucket"
	"weekend-at-joes/backend/internal/domain/chat"
	"weekend-at-joes/backend/internal/domain/forum"
	"weekend-at-joes/backend/internal/domain/user"
	"weekend-at-joes/backend/internal/infra/token"
	"weekend-at-joes/pkg/wire"
)

const (
	previewRunes    = 280
	censoredText    = "[censored]"
	bearerTokenType = "Bearer"
)

func toUserResponse(u user.User) wire.UserResponse {
	return wire.UserResponse{
		UUID:        u.UUID,
		UserName:    u.UserName,
		DisplayName: u.DisplayName,
		Roles:       u.RoleList(),
	}
}

func toUserResponses(users []user.User) []wire.UserResponse {
	out := make([]wire.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toTokenResponse(p token.Pair) wire.TokenResponse {
	return wire.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    bearerTokenType,
		ExpiresIn:    p.ExpiresIn,
	}
}

func toArticleResponse(a article.Article) wire.ArticleResponse {
	return wire.ArticleResponse{
		UUID:        a.UUID,
		AuthorUUID:  a.AuthorUUID,
		Title:       a.Title,
		Slug:        a.Slug,
		Body:        a.Body,
		PublishDate: a.PublishDate,
	}
}

func toMinimalArticleResponses(articles []article.Article) []wire.MinimalArticleResponse {
	out := make([]wire.MinimalArticleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, wire.MinimalArticleResponse{
			UUID:        a.UUID,
			Title:       a.Title,
			Slug:        a.Slug,
			PublishDate: a.PublishDate,
		})
	}
	return out
}

func toFullArticleResponse(d article.ArticleData) wire.FullArticleResponse {
	return wire.FullArticleResponse{
		UUID:        d.Article.UUID,
		Author:      toUserResponse(d.User),
		Title:       d.Article.Title,
		Slug:        d.Article.Slug,
		Body:        d.Article.Body,
		PublishDate: d.Article.PublishDate,
	}
}

func toArticlePreview(d article.ArticleData) wire.ArticlePreviewResponse {
	return wire.ArticlePreviewResponse{
		UUID:        d.Article.UUID,
		Author:      toUserResponse(d.User),
		Title:       d.Article.Title,
		Slug:        d.Article.Slug,
		BodyPreview: truncateRunes(d.Article.Body, previewRunes),
		PublishDate: d.Article.PublishDate,
	}
}

// truncateRunes 按字符截断，避免切坏多字节字符。
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}

func toForumResponse(f forum.Forum) wire.ForumResponse {
	return wire.ForumResponse{UUID: f.UUID, Title: f.Title, Description: f.Description}
}

func toMinimalThreadResponse(t forum.Thread, author user.User) wire.MinimalThreadResponse {
	return wire.MinimalThreadResponse{
		UUID:        t.UUID,
		ForumUUID:   t.ForumUUID,
		Title:       t.Title,
		Author:      toUserResponse(author),
		CreatedDate: t.CreatedDate,
		Locked:      t.Locked,
		Archived:    t.Archived,
	}
}

// toPostResponse 被屏蔽的帖子只保留结构，不下发正文。
func toPostResponse(d forum.PostData) wire.PostResponse {
	content := d.Post.Content
	if d.Post.Censored {
		content = censoredText
	}
	children := make([]wire.PostResponse, 0, len(d.Children))
	for _, child := range d.Children {
		children = append(children, toPostResponse(child))
	}
	return wire.PostResponse{
		UUID:         d.Post.UUID,
		ThreadUUID:   d.Post.ThreadUUID,
		ParentUUID:   d.Post.ParentUUID,
		Author:       toUserResponse(d.User),
		CreatedDate:  d.Post.CreatedDate,
		ModifiedDate: d.Post.ModifiedDate,
		Content:      content,
		Censored:     d.Post.Censored,
		Children:     children,
	}
}

func toThreadResponse(d forum.ThreadData) wire.ThreadResponse {
	return wire.ThreadResponse{
		MinimalThreadResponse: toMinimalThreadResponse(d.Thread, d.User),
		InitialPost:           toPostResponse(forum.PostData{Post: d.Post, User: d.User}),
	}
}

func toFullThreadResponse(d forum.FullThreadData) wire.FullThreadResponse {
	posts := make([]wire.PostResponse, 0, len(d.Posts))
	for _, p := range d.Posts {
		posts = append(posts, toPostResponse(p))
	}
	return wire.FullThreadResponse{
		MinimalThreadResponse: toMinimalThreadResponse(d.Thread, d.User),
		Posts:                 posts,
	}
}

func toBucketResponse(b bucket.Bucket) wire.BucketResponse {
	return wire.BucketResponse{UUID: b.UUID, BucketName: b.BucketName, IsPublic: b.IsPublic}
}

func toBucketResponses(buckets []bucket.Bucket) []wire.BucketResponse {
	out := make([]wire.BucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, toBucketResponse(b))
	}
	return out
}

func toAnswerResponse(d bucket.AnswerData) wire.AnswerResponse {
	return wire.AnswerResponse{
		UUID:         d.Answer.UUID,
		QuestionUUID: d.Answer.QuestionUUID,
		AnswerText:   d.Answer.AnswerText,
		Author:       toUserResponse(d.User),
	}
}

func toQuestionResponse(d bucket.QuestionData) wire.QuestionResponse {
	answers := make([]wire.AnswerResponse, 0, len(d.Answers))
	for _, a := range d.Answers {
		answers = append(answers, toAnswerResponse(a))
	}
	return wire.QuestionResponse{
		UUID:         d.Question.UUID,
		BucketUUID:   d.Question.BucketUUID,
		Author:       toUserResponse(d.User),
		QuestionText: d.Question.QuestionText,
		OnFloor:      d.Question.OnFloor,
		Answers:      answers,
	}
}

func toChatResponse(c chat.Chat) wire.ChatResponse {
	return wire.ChatResponse{UUID: c.UUID, ChatName: c.ChatName, LeaderUUID: c.LeaderUUID}
}

func toMessageResponse(d chat.MessageData) wire.MessageResponse {
	return wire.MessageResponse{
		UUID:       d.Message.UUID,
		ChatUUID:   d.Message.ChatUUID,
		Author:     toUserResponse(d.User),
		ReplyUUID:  d.Message.ReplyUUID,
		Content:    d.Message.Content,
		ReadFlag:   d.Message.ReadFlag,
		CreateDate: d.Message.CreateDate,
	}
}
