package handlers

import (
	"net/http"

	"community/internal/logger"
	"community/internal/models"
	"community/internal/services"
	helpers "community/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ArticleHandler struct {
	svc services.ArticleService
}

func NewArticleHandler(svc services.ArticleService) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

// Write
// @Summary      Создать статью
// @Description  Автору начисляется 3 балла.
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        body  body      models.ArticleWriteRequest  true  "Данные статьи"
// @Success      200   {object}  models.ArticleIDResponse
// @Failure      400   {object}  helpers.ErrorResponse
// @Failure      401   {object}  helpers.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /article [post]
func (h *ArticleHandler) Write(w http.ResponseWriter, r *http.Request) {
	var req models.ArticleWriteRequest
	if err := helpers.Decode(w, r, &req); err != nil {
		logger.WithCtx(r.Context()).Warn("ошибка декодирования JSON при создании статьи", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	id, err := h.svc.WriteArticle(r.Context(), req.Title, req.Contents)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, models.ArticleIDResponse{ArticleID: id})
}

// Update
// @Summary      Обновить статью
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        body  body      models.ArticleUpdateRequest  true  "Новые заголовок и текст"
// @Success      200   {object}  models.ArticleIDResponse
// @Failure      400   {object}  helpers.ErrorResponse
// @Failure      404   {object}  helpers.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /article [put]
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ArticleUpdateRequest
	if err := helpers.Decode(w, r, &req); err != nil {
		logger.WithCtx(r.Context()).Warn("ошибка декодирования JSON при обновлении статьи", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	id, err := h.svc.UpdateArticle(r.Context(), req.ArticleID, req.Title, req.Contents)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, models.ArticleIDResponse{ArticleID: id})
}

// Delete
// @Summary      Удалить статью
// @Description  Удаляет статью с комментариями и откатывает все связанные начисления.
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "ID статьи"
// @Success      200  {object}  models.DeleteCountResponse
// @Failure      404  {object}  helpers.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /article/{id} [delete]
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	count, err := h.svc.DeleteArticle(r.Context(), id)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, models.DeleteCountResponse{Count: count})
}

// GetComments
// @Summary      Комментарии статьи
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "ID статьи"
// @Success      200  {object}  models.ArticleCommentsResponse
// @Failure      404  {object}  helpers.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /article/{id} [get]
func (h *ArticleHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := h.svc.GetCommentsOfArticle(r.Context(), id)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, resp)
}

// WriteComment
// @Summary      Оставить комментарий
// @Description  Комментатору +2 балла, автору статьи +1.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        body  body      models.CommentWriteRequest  true  "Комментарий"
// @Success      200   {object}  models.CommentIDResponse
// @Failure      404   {object}  helpers.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /comments [post]
func (h *ArticleHandler) WriteComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentWriteRequest
	if err := helpers.Decode(w, r, &req); err != nil {
		logger.WithCtx(r.Context()).Warn("ошибка декодирования JSON при создании комментария", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	id, err := h.svc.WriteComment(r.Context(), req.ArticleID, req.Contents)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, models.CommentIDResponse{CommentID: id})
}

// DeleteComment
// @Summary      Удалить комментарий
// @Tags         comments
// @Produce      json
// @Param        id   path      string  true  "ID комментария"
// @Success      200  {object}  models.CommentIDResponse
// @Failure      404  {object}  helpers.ErrorResponse
// @Security     ApiKeyAuth
// @Router       /comments/{id} [delete]
func (h *ArticleHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := h.svc.DeleteComment(r.Context(), id)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, models.CommentIDResponse{CommentID: deleted})
}
