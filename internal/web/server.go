// Package web serves the catalog console pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalogconsole/internal/auth"
	"catalogconsole/internal/errs"
	"catalogconsole/internal/logger"
	"catalogconsole/internal/models"
	"catalogconsole/internal/workspace"
)

//go:embed views/*.tmpl
var viewsFS embed.FS

type ViewData map[string]any

const (
	consoleCookie = "console"
	workspaceKey  = "workspace_id"
	workspaceCtx  = "web.workspace"

	loginPath = "/login"
	formPath  = "/products/form"
)

type Server struct {
	registry *workspace.Registry
	auth     *auth.Authenticator
	gate     auth.Gate
	log      *zap.Logger
}

func NewServer(registry *workspace.Registry, authenticator *auth.Authenticator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		registry: registry,
		auth:     authenticator,
		gate:     auth.NewGate(loginPath),
		log:      log,
	}
}

// Templates parses the embedded views.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"price": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).ParseFS(viewsFS, "views/*.tmpl"))
}

// Router wires middleware and routes. store backs both the token and console cookies.
func (s *Server) Router(store sessions.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(s.log))
	r.SetHTMLTemplate(Templates())

	r.Use(sessions.SessionsMany([]string{auth.TokenCookie, consoleCookie}, store))
	r.Use(auth.LoadSession())
	ws := s.withWorkspace()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "workspaces": s.registry.Len()})
	})

	r.GET("/", ws, s.listProducts)
	r.GET(loginPath, s.loginPage)
	r.POST(loginPath, s.login)
	r.POST("/logout", s.logout)

	// add/update/delete and the dialog itself need a token before any handler runs
	products := r.Group("/products", s.gate.RequireToken(), ws)
	products.GET("/addProduct", s.openAddDialog)
	products.GET("/updateProduct/:id", s.openUpdateDialog)
	products.POST("/deleteProduct/:id", s.deleteProduct)
	products.GET("/form", s.showForm)
	products.POST("/form", s.postForm)
	products.GET("/form/state", s.formState)
	products.PATCH("/form/fields", s.patchFields)
	products.POST("/form/image", s.uploadImage)
	products.POST("/form/close", s.closeForm)

	return r
}

// lookupWorkspace returns the browser's workspace without creating one.
func (s *Server) lookupWorkspace(c *gin.Context) (*workspace.Workspace, bool) {
	id, _ := sessions.DefaultMany(c, consoleCookie).Get(workspaceKey).(string)
	return s.registry.Get(id)
}

// withWorkspace attaches the browser's workspace, creating one on first visit
// to a catalog route or after it was swept.
func (s *Server) withWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.DefaultMany(c, consoleCookie)
		w, ok := s.lookupWorkspace(c)
		if !ok {
			w = s.registry.Create()
			sess.Set(workspaceKey, w.ID.String())
			if err := sess.Save(); err != nil {
				logger.For(c, s.log).Warn("saving console session", zap.Error(err))
			}
		}
		c.Set(workspaceCtx, w)
		c.Next()
	}
}

func currentWorkspace(c *gin.Context) *workspace.Workspace {
	return c.MustGet(workspaceCtx).(*workspace.Workspace)
}

// page fills the data every template needs.
func (s *Server) page(c *gin.Context, data ViewData) ViewData {
	if data == nil {
		data = ViewData{}
	}
	data["LoggedIn"] = auth.FromContext(c).Present()

	sess := sessions.DefaultMany(c, consoleCookie)
	if flashes := sess.Flashes(); len(flashes) > 0 {
		data["Flashes"] = flashes
		_ = sess.Save()
	}
	return data
}

func (s *Server) flash(c *gin.Context, msg string) {
	sess := sessions.DefaultMany(c, consoleCookie)
	sess.AddFlash(msg)
	if err := sess.Save(); err != nil {
		logger.For(c, s.log).Warn("saving flash", zap.Error(err))
	}
}

// describe turns an operation error into the message shown to the user.
func describe(action string, err error) string {
	switch {
	case errs.Is(err, errs.KindStale):
		return "The dialog was closed before the request finished."
	case errs.Is(err, errs.KindValidation):
		return fmt.Sprintf("Could not %s: %v", action, err)
	case errs.Is(err, errs.KindNotFound):
		return "Product not found."
	case errs.Is(err, errs.KindAuthentication):
		return errs.ErrInvalidCredentials.Message
	}
	if status := errs.Status(err); status != 0 {
		return fmt.Sprintf("Could not %s (backend answered %d).", action, status)
	}
	return fmt.Sprintf("Could not %s. Please try again.", action)
}

func draftText(d models.Draft) map[string]string {
	out := make(map[string]string, len(models.Fields))
	for _, f := range models.Fields {
		out[string(f)] = d.Text(f)
	}
	return out
}

// options lists the choices for a select. A stored value the list does not
// know is offered too, so posting the form unchanged keeps it.
func options[T ~string](known []T, current T) []string {
	out := make([]string, 0, len(known)+1)
	found := current == ""
	for _, v := range known {
		out = append(out, string(v))
		if v == current {
			found = true
		}
	}
	if !found {
		out = append(out, string(current))
	}
	return out
}
