package httpserver

import (
	"errors"
	"net/http"

	"chaeen-storefront/internal/service/gate"
	"chaeen-storefront/internal/service/inventory"
	"chaeen-storefront/internal/service/notice"
	"chaeen-storefront/internal/service/shop"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password" form:"password"`
}

// maxUploadBody caps a multipart upload request: one image plus form overhead.
const maxUploadBody = inventory.MaxImageSize + 1<<20

type formImageRequest struct {
	Form     inventory.Form `json:"form"`
	ImageURL string         `json:"image_url"`
}

type gateResponse struct {
	State   gate.State      `json:"state"`
	Message string          `json:"message,omitempty"`
	Notices []notice.Notice `json:"notices"`
}

func gateBody(g *gate.Gate) gateResponse {
	snap := g.Snapshot()
	return gateResponse{State: snap.State, Message: snap.Message, Notices: g.Notices()}
}

func (h *handlers) enterGate(c *gin.Context) {
	s := scopeFrom(c)
	s.gate.Enter(c.Request.Context())
	h.respond(c, http.StatusOK, gateBody(s.gate))
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login request"})
		return
	}
	s := scopeFrom(c)
	if err := s.gate.Submit(c.Request.Context(), req.Identifier, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": s.gate.State()})
		return
	}
	status := http.StatusOK
	if s.gate.State() != gate.StateAuthenticated {
		status = http.StatusUnauthorized
	}
	h.respond(c, status, gateBody(s.gate))
}

func (h *handlers) logout(c *gin.Context) {
	s := scopeFrom(c)
	if err := s.gate.Logout(c.Request.Context()); err != nil {
		h.logger.Printf("admin logout: %v", err)
	}
	s.dash.CancelDelete()
	h.respond(c, http.StatusOK, gateBody(s.gate))
}

func (h *handlers) gateState(c *gin.Context) {
	s := scopeFrom(c)
	c.JSON(http.StatusOK, gateBody(s.gate))
}

// requireAdmin admits only an authenticated gate whose session still
// belongs to an admin.
func (h *handlers) requireAdmin(c *gin.Context) {
	s := scopeFrom(c)
	if s.gate.State() != gate.StateAuthenticated {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin sign-in required", "state": s.gate.State()})
		return
	}
	if !s.api.IsAdmin(c.Request.Context()) {
		_ = s.gate.Logout(c.Request.Context())
		s.dash.CancelDelete()
		h.respond(c, http.StatusUnauthorized, gin.H{"error": gate.MsgAccessDenied, "state": s.gate.State()})
		c.Abort()
		return
	}
	c.Next()
}

func (h *handlers) adminProducts(c *gin.Context) {
	s := scopeFrom(c)
	products, err := s.dash.Products(c.Request.Context())
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":       products,
		"count":          len(products),
		"pending_delete": s.dash.PendingDelete(),
		"new_form":       inventory.NewForm(),
	})
}

func (h *handlers) editForm(c *gin.Context) {
	s := scopeFrom(c)
	p := s.api.Product(c.Request.Context(), c.Param("id"))
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.ID, "form": inventory.FormFromProduct(*p)})
}

func (h *handlers) createProduct(c *gin.Context) {
	var form inventory.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product form"})
		return
	}
	s := scopeFrom(c)
	p, err := s.dash.Create(c.Request.Context(), form)
	if err != nil {
		h.mutationError(c, s, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": p, "notices": s.dash.Notices()})
}

func (h *handlers) updateProduct(c *gin.Context) {
	var form inventory.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product form"})
		return
	}
	s := scopeFrom(c)
	p, err := s.dash.Update(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		h.mutationError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p, "notices": s.dash.Notices()})
}

func (h *handlers) requestDelete(c *gin.Context) {
	s := scopeFrom(c)
	s.dash.RequestDelete(c.Param("id"))
	h.respond(c, http.StatusOK, gin.H{"pending_delete": s.dash.PendingDelete()})
}

func (h *handlers) cancelDelete(c *gin.Context) {
	s := scopeFrom(c)
	s.dash.CancelDelete()
	h.respond(c, http.StatusOK, gin.H{"pending_delete": s.dash.PendingDelete()})
}

func (h *handlers) confirmDelete(c *gin.Context) {
	s := scopeFrom(c)
	id := s.dash.PendingDelete()
	if err := s.dash.ConfirmDelete(c.Request.Context()); err != nil {
		h.respond(c, errorStatus(err), gin.H{
			"error":          err.Error(),
			"pending_delete": s.dash.PendingDelete(),
			"notices":        s.dash.Notices(),
		})
		return
	}
	h.respond(c, http.StatusOK, gin.H{"deleted": id, "notices": s.dash.Notices()})
}

// setFormImage puts a pasted image URL into a form, or clears the image
// when the URL is empty.
func (h *handlers) setFormImage(c *gin.Context) {
	var req formImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	if req.ImageURL == "" {
		req.Form.ClearImage()
	} else {
		req.Form.UseImageURL(req.ImageURL)
	}
	s := scopeFrom(c)
	c.JSON(http.StatusOK, gin.H{"form": req.Form, "can_submit": req.Form.CanSubmit(s.dash.Uploading())})
}

func (h *handlers) uploadImage(c *gin.Context) {
	tooLarge := func() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   inventory.ErrFileTooLarge.Error(),
			"notices": []notice.Notice{notice.Failure("File too large", inventory.ErrFileTooLarge.Error())},
		})
	}
	if c.Request.ContentLength > maxUploadBody {
		tooLarge()
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBody)
	fh, err := c.FormFile("file")
	var capErr *http.MaxBytesError
	if errors.As(err, &capErr) {
		tooLarge()
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	body, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	s := scopeFrom(c)
	url, err := s.dash.UploadImage(c.Request.Context(), shop.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        body,
	})
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error(), "notices": s.dash.Notices()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "notices": s.dash.Notices()})
}

func (h *handlers) deleteImage(c *gin.Context) {
	s := scopeFrom(c)
	if err := s.api.DeleteProductImage(c.Request.Context(), c.Query("url")); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) mutationError(c *gin.Context, s *adminScope, err error) {
	var validErr *inventory.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validErr.Fields})
		return
	}
	c.JSON(errorStatus(err), gin.H{"error": err.Error(), "notices": s.dash.Notices()})
}
