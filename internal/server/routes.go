package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(s.logger))
	r.Use(cors(s.cfg.CORSOrigins))

	r.SetHTMLTemplate(callbackTemplate)

	r.GET("/healthz", s.healthz)

	r.GET("/auth", s.authRedirect)
	r.GET("/callback", s.callback)

	r.GET("/me", s.me)
	r.GET("/dialogs", s.dialogs)
	r.GET("/dialogs/:id/messages", s.messages)
	r.GET("/resumes", s.resumes)
	r.GET("/vacancies", s.vacancies)
	r.POST("/vacancies/:id/apply", s.apply)

	return r
}
