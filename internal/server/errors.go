package server

import (
	"github.com/gin-gonic/gin"
)

const (
	msgMissingCode     = "Missing authorization code"
	msgTokenFailed     = "Failed to get token"
	msgNoToken         = "No token available"
	msgUnauthorized    = "Unauthorized"
	msgPleaseLogin     = "Unauthorized. Please login first."
	msgTokenInvalid    = "Token invalid or expired"
	msgReauthorize     = "Token expired and could not be refreshed. Please log in again."
	msgDialogsFailed   = "Failed to fetch dialogs"
	msgMessagesFailed  = "Failed to fetch messages"
	msgResumesFailed   = "Failed to fetch resumes"
	msgVacanciesFailed = "Failed to fetch vacancies"
	msgNoResume        = "No resume found"
	msgMissingVacancy  = "Missing vacancy_id"
	msgApplyFailed     = "Failed to apply to vacancy"
)

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
