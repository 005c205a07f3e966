package httpserver

import (
	"errors"
	"log"
	"net/http"
	"time"

	"chaeen-storefront/internal/querycache"
	"chaeen-storefront/internal/service/catalog"
	"chaeen-storefront/internal/service/shop"
	"chaeen-storefront/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the services the router needs.
type Deps struct {
	Shop     *shop.Service
	Catalog  *catalog.Service
	Cache    *querycache.Cache
	Sessions sessions.Store
	// Objects serves public bucket objects when set.
	Objects     storage.ObjectStore
	SiteURL     string
	CORSOrigins []string
	Now         func() time.Time
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Shop == nil {
		return nil, errors.New("shop service is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if deps.Cache == nil {
		deps.Cache = querycache.New(0)
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.New(deps.Shop, deps.Cache, "", logger)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &handlers{deps: deps, logger: logger}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/sitemap.xml", h.sitemap)
	router.GET("/robots.txt", h.robots)
	router.GET("/manifest.webmanifest", h.manifest)
	if deps.Objects != nil {
		router.GET(storage.PublicPathPrefix+":bucket/*path", h.publicObject)
	}

	api := router.Group("/api")
	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.productDetail)
	api.GET("/pages/:slug", h.page)
	api.GET("/routes", h.routes)

	admin := api.Group("/admin", h.sessionMiddleware)
	admin.POST("/enter", h.enterGate)
	admin.POST("/login", h.login)
	admin.POST("/logout", h.logout)
	admin.GET("/state", h.gateState)

	dash := admin.Group("", h.requireAdmin)
	dash.GET("/products", h.adminProducts)
	dash.POST("/products", h.createProduct)
	dash.GET("/products/:id/form", h.editForm)
	dash.PUT("/products/:id", h.updateProduct)
	dash.POST("/products/:id/delete", h.requestDelete)
	dash.POST("/delete/confirm", h.confirmDelete)
	dash.POST("/delete/cancel", h.cancelDelete)
	dash.POST("/form/image", h.setFormImage)
	dash.POST("/images", h.uploadImage)
	dash.DELETE("/images", h.deleteImage)

	router.NoRoute(h.resolve)

	return router, nil
}
