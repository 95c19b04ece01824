package services

import (
	"errors"
	"html"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/terraincognita07/just/internal/models"
)

const maxPostLength = 500

var (
	ErrPostContentRequired = errors.New("post content is required")
	ErrPostTooLong         = errors.New("post content too long")
	ErrPostNotFound        = errors.New("post not found")
)

// CommunityService keeps the process-wide feed in memory, newest first.
type CommunityService struct {
	messages Translator
	policy   *bluemonday.Policy
	now      func() time.Time

	mu    sync.RWMutex
	posts []models.Post
}

func NewCommunityService(messages Translator, now func() time.Time) *CommunityService {
	if now == nil {
		now = time.Now
	}
	service := &CommunityService{
		messages: messages,
		policy:   bluemonday.StrictPolicy(),
		now:      now,
	}
	service.posts = seedPosts(now())
	return service
}

func seedPosts(now time.Time) []models.Post {
	return []models.Post{
		{ID: "seed-1", Author: "익명", Content: "오늘 진짜 아무것도 하기 싫었는데, 물 한잔 마시기 목표 달성하고 나니까 책상에 앉게 되더라. 다들 힘내!", Likes: 12, Timestamp: now, IsAuthorPublic: false},
		{ID: "seed-2", Author: "공부왕", Content: "스탬프 일주일 연속 찍었다!! 700포인트 개이득 ㅎㅎ", Likes: 24, Timestamp: now, IsAuthorPublic: true},
		{ID: "seed-3", Author: "익명", Content: "3년째 쉬는중인데 다시 시작할 수 있을까..?", Likes: 45, Timestamp: now, IsAuthorPublic: false},
	}
}

func (service *CommunityService) List() []models.Post {
	service.mu.RLock()
	defer service.mu.RUnlock()

	posts := make([]models.Post, len(service.posts))
	copy(posts, service.posts)
	return posts
}

// SanitizeContent strips markup and returns plain text bounded to the post limit.
func (service *CommunityService) SanitizeContent(raw string) (string, error) {
	content := html.UnescapeString(service.policy.Sanitize(strings.TrimSpace(raw)))
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrPostContentRequired
	}
	if utf8.RuneCountInString(content) > maxPostLength {
		return "", ErrPostTooLong
	}
	return content, nil
}

func (service *CommunityService) Create(author *models.User, lang string, raw string) (models.Post, error) {
	content, err := service.SanitizeContent(raw)
	if err != nil {
		return models.Post{}, err
	}

	name := service.messages.Translate(lang, "community.anonymous")
	if author.IsPublic {
		name = author.Nickname
	}
	post := models.Post{
		ID:             uuid.NewString(),
		Author:         name,
		Content:        content,
		Timestamp:      service.now(),
		IsAuthorPublic: author.IsPublic,
	}

	service.mu.Lock()
	service.posts = append([]models.Post{post}, service.posts...)
	service.mu.Unlock()
	return post, nil
}

func (service *CommunityService) Like(postID string) (models.Post, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	for index := range service.posts {
		if service.posts[index].ID == postID {
			service.posts[index].Likes++
			return service.posts[index], nil
		}
	}
	return models.Post{}, ErrPostNotFound
}
