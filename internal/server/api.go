package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DenisStobert/hh-autoapply-backend/internal/headhunter"
	"github.com/DenisStobert/hh-autoapply-backend/internal/session"
	"github.com/DenisStobert/hh-autoapply-backend/internal/utils"
)

const (
	maxLoggedBodyLen = 512
	msgInvalidBody   = "Invalid request body"
)

type applyRequest struct {
	Message string `json:"message"`
}

// token returns the current access token or answers 401 with msg.
func (s *Server) token(c *gin.Context, msg string) (string, bool) {
	token, err := s.session.Token()
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, msg)
		return "", false
	}
	return token, true
}

// fail logs an upstream failure and answers with msg.
func (s *Server) fail(c *gin.Context, err error, status int, msg string) {
	s.requestLog(c).Error(msg,
		zap.Error(err),
		zap.String("body", utils.TruncateForLog(headhunter.ErrorBody(err), maxLoggedBodyLen)),
	)
	abortWithError(c, status, msg)
}

func rawJSON(c *gin.Context, status int, raw json.RawMessage) {
	c.Data(status, "application/json; charset=utf-8", raw)
}

func (s *Server) me(c *gin.Context) {
	token, ok := s.token(c, msgNoToken)
	if !ok {
		return
	}

	raw, err := s.hh.Me(c.Request.Context(), token)
	if err != nil {
		s.fail(c, err, headhunter.StatusCode(err), msgTokenInvalid)
		return
	}

	rawJSON(c, http.StatusOK, raw)
}

func (s *Server) dialogs(c *gin.Context) {
	token, ok := s.token(c, msgUnauthorized)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	items, err := s.hh.Negotiations(ctx, token, c.Request.URL.Query())
	if err != nil {
		s.fail(c, err, http.StatusInternalServerError, msgDialogsFailed)
		return
	}

	if s.enricher != nil {
		items, _ = s.enricher.Apply(ctx, token, items)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) messages(c *gin.Context) {
	token, ok := s.token(c, msgUnauthorized)
	if !ok {
		return
	}

	id := c.Param("id")
	raw, err := s.hh.Messages(c.Request.Context(), token, id)
	if err != nil {
		s.fail(c, err, http.StatusInternalServerError, msgMessagesFailed)
		return
	}

	s.requestLog(c).Debug("got dialog messages", zap.String("negotiation_id", id))
	rawJSON(c, http.StatusOK, raw)
}

func (s *Server) resumes(c *gin.Context) {
	token, ok := s.token(c, msgUnauthorized)
	if !ok {
		return
	}

	raw, err := s.hh.MineResumesRaw(c.Request.Context(), token)
	if err != nil {
		s.fail(c, err, http.StatusInternalServerError, msgResumesFailed)
		return
	}

	rawJSON(c, http.StatusOK, raw)
}

// vacancies is the only handler that refreshes an expired token.
func (s *Server) vacancies(c *gin.Context) {
	params := headhunter.SearchParamsFromQuery(c.Request.URL.Query())

	var raw json.RawMessage
	err := s.session.WithRefresh(c.Request.Context(), func(ctx context.Context, token string) error {
		result, err := s.hh.Search(ctx, token, params)
		if err != nil {
			return err
		}
		raw = result
		return nil
	})

	switch {
	case err == nil:
		rawJSON(c, http.StatusOK, raw)
	case errors.Is(err, session.ErrReauthorize):
		s.fail(c, err, http.StatusUnauthorized, msgReauthorize)
	case errors.Is(err, session.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, msgPleaseLogin)
	default:
		s.fail(c, err, http.StatusInternalServerError, msgVacanciesFailed)
	}
}

func (s *Server) apply(c *gin.Context) {
	token, ok := s.token(c, msgUnauthorized)
	if !ok {
		return
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	ctx := c.Request.Context()
	log := s.requestLog(c)

	resumes, err := s.hh.MineResumes(ctx, token)
	if err != nil {
		s.fail(c, err, headhunter.StatusCode(err), msgApplyFailed)
		return
	}

	resume, err := resumes.First()
	if err != nil {
		log.Warn("no resume to apply with", zap.Int("resumes", resumes.Len()))
		abortWithError(c, http.StatusBadRequest, msgNoResume)
		return
	}

	vacancyID := strings.TrimSpace(c.Param("id"))
	if vacancyID == "" {
		abortWithError(c, http.StatusBadRequest, msgMissingVacancy)
		return
	}

	log.Info("applying to vacancy", zap.String("vacancy_id", vacancyID), zap.String("resume_id", resume.ID))

	result, err := s.hh.Apply(ctx, token, headhunter.ApplyParams{
		VacancyID: vacancyID,
		ResumeID:  resume.ID,
		Message:   req.Message,
	})
	if err != nil {
		s.fail(c, err, headhunter.StatusCode(err), msgApplyFailed)
		return
	}

	c.JSON(result.StatusCode, gin.H{
		"success": true,
		"state":   result.State,
	})
}
