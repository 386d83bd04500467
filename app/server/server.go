package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haqim007/story-app/app/remote"
)

const ctxAccountID = "accountID"

// NewServer creates the story service HTTP surface with all routes
// configured. It serves the same contract the mobile client consumes.
func NewServer(handler *Handler, store *Store) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	setupRoutes(r, handler, store)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, store *Store) {
	r.POST("/register", handler.Register)
	r.POST("/login", handler.Login)

	authed := r.Group("/")
	authed.Use(authMiddleware(store))
	{
		authed.GET("/stories", handler.GetStories)
		authed.POST("/stories", handler.AddStory)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// authMiddleware resolves the Bearer token to an account and aborts
// with 401 when the session is missing or unknown.
func authMiddleware(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" || token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, remote.BasicResponse{
				Error:   true,
				Message: "Missing authentication",
			})
			return
		}

		accountID, err := store.Authorize(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, remote.BasicResponse{
				Error:   true,
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set(ctxAccountID, accountID)
		c.Next()
	}
}
