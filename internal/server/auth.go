package server

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const callbackTemplateName = "callback"

var callbackTemplate = template.Must(template.New(callbackTemplateName).Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Возврат в приложение</title>
  </head>
  <body>
    <h2>Почти готово!</h2>
    <p>Нажмите кнопку ниже, чтобы вернуться в приложение AutoApply.</p>
    <a href="{{.DeepLink}}">
      <button style="padding: 10px 20px; font-size: 16px;">Открыть AutoApply</button>
    </a>
    <script>
      window.location = {{.DeepLink}};
    </script>
  </body>
</html>
`))

type callbackPage struct {
	// DeepLink uses a custom scheme, html/template would reject it as a plain string.
	DeepLink template.URL
}

func (s *Server) authRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, s.hh.AuthCodeURL(s.cfg.State))
}

func (s *Server) callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		abortWithError(c, http.StatusBadRequest, msgMissingCode)
		return
	}

	cred, err := s.session.Login(c.Request.Context(), code)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, msgTokenFailed)
		return
	}

	link := deepLink(s.cfg.DeepLink, cred.AccessToken, cred.RefreshToken)
	s.requestLog(c).Info("redirecting to the app", zap.String("deep_link_base", s.cfg.DeepLink))

	c.HTML(http.StatusOK, callbackTemplateName, callbackPage{DeepLink: template.URL(link)})
}

func deepLink(base, accessToken, refreshToken string) string {
	q := url.Values{}
	q.Set("access_token", accessToken)
	q.Set("refresh_token", refreshToken)

	return base + "?" + q.Encode()
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"authenticated": s.session.Authenticated(),
	})
}
