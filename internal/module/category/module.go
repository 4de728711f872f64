package category

import "github.com/gin-gonic/gin"

// CategoryModule implements the app.Module interface for the category domain.
type CategoryModule struct {
	handler *CategoryHandler
}

// NewModule creates a new CategoryModule with the given handler.
// Panics if h is nil.
func NewModule(h *CategoryHandler) *CategoryModule {
	if h == nil {
		panic("category.NewModule: handler must not be nil")
	}
	return &CategoryModule{handler: h}
}

// RegisterRoutes registers the category API routes under api.
func (m *CategoryModule) RegisterRoutes(api *gin.RouterGroup) {
	categories := api.Group("/categories")
	categories.POST("", m.handler.Create)
	categories.GET("", m.handler.List)
	categories.GET("/:id", m.handler.Get)
	categories.PUT("/:id", m.handler.Update)
	categories.DELETE("/:id", m.handler.Delete)
}
