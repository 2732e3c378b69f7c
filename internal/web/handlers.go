package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"catalogconsole/internal/auth"
	"catalogconsole/internal/catalog"
	"catalogconsole/internal/errs"
	"catalogconsole/internal/logger"
	"catalogconsole/internal/models"
)

// ---------- list ----------

func (s *Server) listProducts(c *gin.Context) {
	w := currentWorkspace(c)
	data := ViewData{}

	items, err := w.Store.FetchAll(c.Request.Context())
	if err != nil {
		// stale list stays usable
		data["Notice"] = "Could not refresh products; showing the last known list."
	}
	data["Items"] = items
	if synced := w.SyncedAt(); !synced.IsZero() {
		data["SyncedAt"] = synced.Format(time.RFC1123)
	}
	c.HTML(http.StatusOK, "list.tmpl", s.page(c, data))
}

// ---------- login ----------

func (s *Server) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", s.page(c, ViewData{"Title": "Login"}))
}

func (s *Server) login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	res, err := s.auth.Login(c.Request.Context(), email, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.tmpl", s.page(c, ViewData{
			"Title": "Login", "Email": email, "Error": describe("log in", err),
		}))
		return
	}
	if err := auth.Persist(c, res.Token); err != nil {
		logger.For(c, s.log).Error("persisting session token", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.tmpl", s.page(c, ViewData{
			"Title": "Login", "Email": email, "Error": "Could not start a session.",
		}))
		return
	}
	if !res.Navigate {
		c.HTML(http.StatusOK, "login.tmpl", s.page(c, ViewData{"Title": "Login", "Email": email}))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) logout(c *gin.Context) {
	if w, ok := s.lookupWorkspace(c); ok {
		w.Form.Close()
	}
	if err := auth.Invalidate(c); err != nil {
		logger.For(c, s.log).Warn("clearing session token", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ---------- intents ----------

func (s *Server) openAddDialog(c *gin.Context) {
	w := currentWorkspace(c)
	s.gate.Guard(auth.FromContext(c), auth.Redirector(c), func() {
		w.Form.OpenCreate()
		c.Redirect(http.StatusSeeOther, formPath)
	})
}

func (s *Server) openUpdateDialog(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	w := currentWorkspace(c)
	s.gate.Guard(auth.FromContext(c), auth.Redirector(c), func() {
		target, err := w.Product(c.Request.Context(), id)
		if err != nil {
			logger.For(c, s.log).Error("error loading product", zap.Int64("id", id), zap.Error(err))
			s.flash(c, describe("load the product", err))
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		w.Form.OpenUpdate(target)
		c.Redirect(http.StatusSeeOther, formPath)
	})
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	w := currentWorkspace(c)
	s.gate.Guard(auth.FromContext(c), auth.Redirector(c), func() {
		if err := w.Store.DeleteByID(c.Request.Context(), id); err != nil {
			s.flash(c, describe("delete product "+strconv.FormatInt(id, 10), err))
		}
		c.Redirect(http.StatusSeeOther, "/")
	})
}

// ---------- dialog ----------

func (s *Server) showForm(c *gin.Context) {
	st := currentWorkspace(c).Form.State()
	if !st.Open {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	title := "Add a new product"
	if st.Mode == catalog.ModeUpdate {
		title = "Update a Product"
	}
	c.HTML(http.StatusOK, "form.tmpl", s.page(c, ViewData{
		"Title":      title,
		"Form":       st,
		"Draft":      draftText(st.Draft),
		"Categories": options(models.Categories, st.Draft.Category),
		"Sizes":      options(models.Sizes, st.Draft.Size),
	}))
}

// postForm writes every posted field whose value differs from what the
// dialog currently shows, like an input's change event, then submits if asked.
func (s *Server) postForm(c *gin.Context) {
	form := currentWorkspace(c).Form
	st := form.State()
	if !st.Open {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	for _, f := range models.Fields {
		raw, posted := c.GetPostForm(string(f))
		if !posted || raw == st.Draft.Text(f) {
			continue
		}
		if err := form.SetField(f, raw); err != nil {
			s.flash(c, describe("set "+string(f), err))
			c.Redirect(http.StatusSeeOther, formPath)
			return
		}
	}

	if c.PostForm("action") != "submit" {
		c.Redirect(http.StatusSeeOther, formPath)
		return
	}
	if err := form.Submit(c.Request.Context()); err != nil {
		s.flash(c, describe("save the product", err))
		if errs.Is(err, errs.KindStale) {
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		c.Redirect(http.StatusSeeOther, formPath)
		return
	}
	s.flash(c, "Product saved.")
	c.Redirect(http.StatusSeeOther, "/")
}

type formStateResponse struct {
	Open    bool              `json:"open"`
	Mode    string            `json:"mode"`
	ID      int64             `json:"id,omitempty"`
	Draft   models.Draft      `json:"draft"`
	Changed []models.Field    `json:"changed"`
	Errors  map[string]string `json:"errors,omitempty"`
	Failure string            `json:"last_error,omitempty"`
}

func stateResponse(st catalog.FormState) formStateResponse {
	res := formStateResponse{
		Open:    st.Open,
		Mode:    st.Mode.String(),
		Draft:   st.Draft,
		Changed: st.Changed,
	}
	if st.Mode == catalog.ModeUpdate {
		res.ID = st.Target.ID
	}
	if st.LastError != nil {
		res.Failure = st.LastError.Error()
	}
	if res.Changed == nil {
		res.Changed = []models.Field{}
	}
	return res
}

func (s *Server) formState(c *gin.Context) {
	c.JSON(http.StatusOK, stateResponse(currentWorkspace(c).Form.State()))
}

// patchFields applies SetField for every key in the JSON body.
func (s *Server) patchFields(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form := currentWorkspace(c).Form
	problems := map[string]string{}
	for key, v := range body {
		f, err := models.ParseField(key)
		if err != nil {
			problems[key] = err.Error()
			continue
		}
		raw, err := cast.ToStringE(v)
		if err != nil {
			problems[key] = err.Error()
			continue
		}
		if err := form.SetField(f, raw); err != nil {
			if errs.Is(err, errs.KindStale) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			problems[key] = err.Error()
		}
	}

	res := stateResponse(form.State())
	status := http.StatusOK
	if len(problems) > 0 {
		res.Errors = problems
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, res)
}

func (s *Server) uploadImage(c *gin.Context) {
	form := currentWorkspace(c).Form
	fh, err := c.FormFile("image")
	if err != nil {
		s.flash(c, "Choose a picture to upload.")
		c.Redirect(http.StatusSeeOther, formPath)
		return
	}
	f, err := fh.Open()
	if err != nil {
		logger.For(c, s.log).Error("opening uploaded file", zap.Error(err))
		s.flash(c, describe("upload the picture", err))
		c.Redirect(http.StatusSeeOther, formPath)
		return
	}
	defer f.Close()

	if _, err := form.UploadImage(c.Request.Context(), fh.Filename, f); err != nil {
		s.flash(c, describe("upload the picture", err))
	}
	c.Redirect(http.StatusSeeOther, formPath)
}

func (s *Server) closeForm(c *gin.Context) {
	currentWorkspace(c).Form.Close()
	c.Redirect(http.StatusSeeOther, "/")
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "bad product id")
		return 0, false
	}
	return id, true
}
