package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"chaeen-storefront/internal/site"
	"chaeen-storefront/internal/storage"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Catalog.List(c.Request.Context()))
}

func (h *handlers) productDetail(c *gin.Context) {
	view, ok := h.deps.Catalog.Detail(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"page": site.NotFoundPage})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) page(c *gin.Context) {
	p, ok := site.LoadPage(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"page": site.NotFoundPage})
		return
	}
	c.JSON(http.StatusOK, p)
}

// resolve answers unmatched requests through the user agent route table.
func (h *handlers) resolve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"page": site.NotFoundPage})
		return
	}
	route, params := site.Match(c.Request.URL.Path)
	if route.Path == "*" {
		c.JSON(http.StatusNotFound, gin.H{"route": route, "page": site.NotFoundPage})
		return
	}
	body := gin.H{"route": route, "params": params}
	if route.Page != "" {
		if p, ok := site.LoadPage(route.Page); ok {
			body["page"] = p
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *handlers) routes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": site.Routes})
}

func (h *handlers) sitemap(c *gin.Context) {
	products, err := h.deps.Shop.Products(c.Request.Context())
	if err != nil {
		// Static routes are still worth serving.
		h.logger.Printf("sitemap: list products: %v", err)
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	body, err := site.Sitemap(h.deps.SiteURL, ids, h.deps.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

func (h *handlers) robots(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", site.Robots(h.deps.SiteURL))
}

func (h *handlers) manifest(c *gin.Context) {
	c.Data(http.StatusOK, "application/manifest+json", site.Manifest())
}

// publicObject serves objects of the product image bucket only.
func (h *handlers) publicObject(c *gin.Context) {
	bucket := c.Param("bucket")
	if bucket != h.deps.Shop.Bucket() {
		c.JSON(http.StatusNotFound, gin.H{"error": storage.ErrObjectNotFound.Error()})
		return
	}
	key := strings.TrimPrefix(c.Param("path"), "/")
	obj, err := h.deps.Objects.Get(c.Request.Context(), bucket, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Printf("public object %s: %v", key, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if obj.CacheControl != "" {
		c.Header("Cache-Control", obj.CacheControl)
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, obj.Body)
}
