package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"community/internal/apperrors"
	"community/internal/logger"
	"community/internal/metrics"
	"community/internal/models"
	"community/internal/repository"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Начисления баллов. Удаление отменяет ровно то, что было начислено.
const (
	PointsArticleWrite    = 3
	PointsCommentWrite    = 2
	PointsCommentReceived = 1
)

type ArticleService interface {
	WriteArticle(ctx context.Context, title, contents string) (string, error)
	UpdateArticle(ctx context.Context, articleID, title, contents string) (string, error)
	DeleteArticle(ctx context.Context, articleID string) (int64, error)
	GetCommentsOfArticle(ctx context.Context, articleID string) (*models.ArticleCommentsResponse, error)
	WriteComment(ctx context.Context, articleID, contents string) (string, error)
	DeleteComment(ctx context.Context, commentID string) (string, error)
}

type articleService struct {
	store  repository.Store
	creds  *CredentialService
	policy *bluemonday.Policy
	newID  func() string
}

func NewArticleService(store repository.Store, creds *CredentialService) ArticleService {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	return &articleService{store: store, creds: creds, policy: p, newID: uuid.NewString}
}

func (s *articleService) WriteArticle(ctx context.Context, title, contents string) (string, error) {
	log := logger.WithCtx(ctx)

	userID, ok := s.creds.CurrentUserID(ctx)
	if !ok {
		return "", apperrors.Unauthenticated("требуется аутентификация")
	}

	title = strings.TrimSpace(title)
	log.Info("Создание статьи (service)", zap.String("title", title), zap.Int("contents_len", len(contents)))
	if title == "" || utf8.RuneCountInString(title) > 255 {
		log.Warn("Валидация не пройдена: заголовок", zap.Int("runes", utf8.RuneCountInString(title)))
		return "", apperrors.Invalid("articleTitle обязателен (до 255 символов)")
	}

	article := &models.Article{
		ID:       s.newID(),
		OwnerID:  userID,
		Title:    title,
		Contents: s.policy.Sanitize(contents),
	}

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		if _, err := r.Accounts.GetByUserID(ctx, userID); err != nil {
			return mapStoreErr(err, "Member not found")
		}
		if err := r.Articles.Create(ctx, article); err != nil {
			return mapStoreErr(err, "Member not found")
		}
		return r.Accounts.AddPoints(ctx, userID, PointsArticleWrite)
	})
	if err != nil {
		log.Error("Ошибка создания статьи (service)", zap.Error(err))
		return "", apperrors.From(err)
	}

	metrics.RecordPoints("article_write", PointsArticleWrite)
	log.Info("Статья создана (service)", zap.String("article_id", article.ID), zap.Int("points", PointsArticleWrite))
	return article.ID, nil
}

// UpdateArticle заменяет заголовок и текст. Проверки владельца нет: достаточно существования статьи.
func (s *articleService) UpdateArticle(ctx context.Context, articleID, title, contents string) (string, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление статьи (service)", zap.String("article_id", articleID))

	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > 255 {
		return "", apperrors.Invalid("articleTitle обязателен (до 255 символов)")
	}

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		a, err := r.Articles.GetForUpdate(ctx, articleID)
		if err != nil {
			return mapStoreErr(err, "Article not found")
		}
		a.Title = title
		a.Contents = s.policy.Sanitize(contents)
		return mapStoreErr(r.Articles.Update(ctx, a), "Article not found")
	})
	if err != nil {
		log.Warn("Статья не обновлена (service)", zap.String("article_id", articleID), zap.Error(err))
		return "", apperrors.From(err)
	}

	log.Info("Статья обновлена (service)", zap.String("article_id", articleID))
	return articleID, nil
}

// DeleteArticle удаляет статью вместе с комментариями и откатывает все связанные начисления:
// автору статьи -3, за каждый комментарий его автору -2 и автору статьи -1.
func (s *articleService) DeleteArticle(ctx context.Context, articleID string) (int64, error) {
	log := logger.WithCtx(ctx)
	log.Info("Удаление статьи (service)", zap.String("article_id", articleID))

	var (
		deleted  int64
		comments []*models.Comment
	)
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		a, err := r.Articles.GetForUpdate(ctx, articleID)
		if err != nil {
			return mapStoreErr(err, "Article not found")
		}

		comments, err = r.Comments.ListByArticle(ctx, articleID)
		if err != nil {
			return err
		}
		deltas := map[string]int{a.OwnerID: -PointsArticleWrite}
		for _, c := range comments {
			deltas[c.OwnerID] -= PointsCommentWrite
			deltas[a.OwnerID] -= PointsCommentReceived
		}
		if _, err := r.Comments.DeleteByArticle(ctx, articleID); err != nil {
			return err
		}

		deleted, err = r.Articles.Delete(ctx, articleID)
		if err != nil {
			return err
		}
		return applyPoints(ctx, r.Accounts, deltas)
	})
	if err != nil {
		log.Warn("Статья не удалена (service)", zap.String("article_id", articleID), zap.Error(err))
		return 0, apperrors.From(err)
	}

	metrics.RecordPoints("article_delete", -PointsArticleWrite)
	for range comments {
		metrics.RecordPoints("comment_delete", -(PointsCommentWrite + PointsCommentReceived))
	}
	log.Info("Статья удалена (service)", zap.String("article_id", articleID), zap.Int("comments", len(comments)))
	return deleted, nil
}

func (s *articleService) GetCommentsOfArticle(ctx context.Context, articleID string) (*models.ArticleCommentsResponse, error) {
	log := logger.WithCtx(ctx)
	log.Debug("Получение комментариев статьи (service)", zap.String("article_id", articleID))

	repos := s.store.Repos()
	if _, err := repos.Articles.GetByID(ctx, articleID); err != nil {
		log.Warn("Статья не найдена (service)", zap.String("article_id", articleID), zap.Error(err))
		return nil, apperrors.From(mapStoreErr(err, "Article not found"))
	}

	comments, err := repos.Comments.ListByArticle(ctx, articleID)
	if err != nil {
		log.Error("Ошибка получения комментариев (service)", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	return &models.ArticleCommentsResponse{ArticleID: articleID, CommentIDs: ids}, nil
}

func (s *articleService) WriteComment(ctx context.Context, articleID, contents string) (string, error) {
	log := logger.WithCtx(ctx)

	userID, ok := s.creds.CurrentUserID(ctx)
	if !ok {
		return "", apperrors.Unauthenticated("требуется аутентификация")
	}
	log.Info("Создание комментария (service)", zap.String("article_id", articleID))

	comment := &models.Comment{
		ID:        s.newID(),
		ArticleID: articleID,
		OwnerID:   userID,
		Contents:  s.policy.Sanitize(contents),
	}

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		a, err := r.Articles.GetForUpdate(ctx, articleID)
		if err != nil {
			return mapStoreErr(err, "Article not found")
		}
		if err := r.Comments.Create(ctx, comment); err != nil {
			return mapStoreErr(err, "Article not found")
		}
		deltas := map[string]int{userID: PointsCommentWrite}
		deltas[a.OwnerID] += PointsCommentReceived
		return mapStoreErr(applyPoints(ctx, r.Accounts, deltas), "Member not found")
	})
	if err != nil {
		log.Warn("Комментарий не создан (service)", zap.String("article_id", articleID), zap.Error(err))
		return "", apperrors.From(err)
	}

	metrics.RecordPoints("comment_write", PointsCommentWrite+PointsCommentReceived)
	log.Info("Комментарий создан (service)", zap.String("comment_id", comment.ID))
	return comment.ID, nil
}

func (s *articleService) DeleteComment(ctx context.Context, commentID string) (string, error) {
	log := logger.WithCtx(ctx)
	log.Info("Удаление комментария (service)", zap.String("comment_id", commentID))

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		c, err := r.Comments.GetByID(ctx, commentID)
		if err != nil {
			return mapStoreErr(err, "Comment not found")
		}
		a, err := r.Articles.GetForUpdate(ctx, c.ArticleID)
		if err != nil {
			return mapStoreErr(err, "Article not found")
		}
		if err := r.Comments.Delete(ctx, commentID); err != nil {
			return mapStoreErr(err, "Comment not found")
		}
		deltas := map[string]int{c.OwnerID: -PointsCommentWrite}
		deltas[a.OwnerID] -= PointsCommentReceived
		return applyPoints(ctx, r.Accounts, deltas)
	})
	if err != nil {
		log.Warn("Комментарий не удалён (service)", zap.String("comment_id", commentID), zap.Error(err))
		return "", apperrors.From(err)
	}

	metrics.RecordPoints("comment_delete", -(PointsCommentWrite + PointsCommentReceived))
	log.Info("Комментарий удалён (service)", zap.String("comment_id", commentID))
	return commentID, nil
}

// applyPoints меняет балансы по возрастанию userid, одним UPDATE на аккаунт.
// Единый порядок блокировок строк accounts исключает взаимные блокировки встречных транзакций.
func applyPoints(ctx context.Context, accounts repository.AccountRepo, deltas map[string]int) error {
	ids := make([]string, 0, len(deltas))
	for id, d := range deltas {
		if d != 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := accounts.AddPoints(ctx, id, deltas[id]); err != nil {
			return err
		}
	}
	return nil
}

// mapStoreErr превращает ErrNotFound хранилища в клиентскую ошибку NotFound.
func mapStoreErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(notFoundMsg).Wrap(err)
	}
	return err
}
