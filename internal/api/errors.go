// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
)

// Messages shared by several handlers.
const (
	msgInvalidJSON    = "请求体格式错误"
	msgFoodNotFound   = "菜品不存在"
	msgSessionMissing = "推荐会话不存在"
	msgSessionClosed  = "推荐会话已结束"
	msgSessionActive  = "已有进行中的推荐会话"
	msgDuplicateFood  = "该菜品已存在"
	msgNoDish         = "暂无可推荐的菜品"
	msgNoDrink        = "暂无可推荐的饮品"
)

// respondServiceError maps a domain error to a status and code.
// notFound is the message for models.ErrNotFound.
//
//	ValidationError         400 BAD_REQUEST
//	ErrNotFound             404 NOT_FOUND
//	ErrEmptyCatalog         404 NOT_FOUND
//	ErrSessionAlreadyClosed 409 SESSION_CLOSED
//	ErrSessionActive        409 CONFLICT
//	ErrDuplicate            409 CONFLICT
//	anything else           500 DATABASE_ERROR
func respondServiceError(rw *ResponseWriter, r *http.Request, err error, notFound string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		rw.BadRequest(ve.Message)
	case errors.Is(err, models.ErrNotFound):
		rw.NotFound(notFound)
	case errors.Is(err, models.ErrEmptyCatalog):
		rw.NotFound(notFound)
	case errors.Is(err, models.ErrSessionAlreadyClosed):
		logging.CtxWarn(r.Context()).Err(err).Str("path", r.URL.Path).Msg("action on closed session")
		rw.Conflict(ErrCodeSessionClosed, msgSessionClosed)
	case errors.Is(err, models.ErrSessionActive):
		rw.Conflict(ErrCodeConflict, msgSessionActive)
	case errors.Is(err, models.ErrDuplicate):
		rw.Conflict(ErrCodeConflict, msgDuplicateFood)
	default:
		rw.DatabaseError(err)
	}
}
