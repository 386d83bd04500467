package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/haqim007/story-app/app/remote"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Register(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")

	if name == "" || email == "" || password == "" {
		c.JSON(http.StatusBadRequest, remote.BasicResponse{
			Error:   true,
			Message: "name, email and password are required",
		})
		return
	}
	if len(password) < 8 {
		c.JSON(http.StatusBadRequest, remote.BasicResponse{
			Error:   true,
			Message: "password must be at least 8 characters",
		})
		return
	}

	if err := h.store.CreateAccount(name, email, password); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, remote.BasicResponse{
				Error:   true,
				Message: "email is already taken",
			})
			return
		}
		slog.Error("Account creation failed", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, remote.BasicResponse{
			Error:   true,
			Message: "failed to create account",
		})
		return
	}

	c.JSON(http.StatusCreated, remote.BasicResponse{
		Error:   false,
		Message: "User created",
	})
}

func (h *Handler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	result, err := h.store.Authenticate(email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, remote.BasicResponse{
				Error:   true,
				Message: "invalid email or password",
			})
			return
		}
		slog.Error("Login failed", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, remote.BasicResponse{
			Error:   true,
			Message: "failed to log in",
		})
		return
	}

	c.JSON(http.StatusOK, remote.LoginResponse{
		Error:       false,
		Message:     "success",
		LoginResult: result,
	})
}

func (h *Handler) GetStories(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, remote.BasicResponse{
			Error:   true,
			Message: "page must be a positive integer",
		})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		c.JSON(http.StatusBadRequest, remote.BasicResponse{
			Error:   true,
			Message: "size must be a positive integer",
		})
		return
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	withLocation := c.Query("location") == "1"

	stories := h.store.StoriesPage(page, size, withLocation)
	if stories == nil {
		stories = []remote.StoryResponse{}
	}

	c.JSON(http.StatusOK, remote.StoriesResponse{
		Error:     false,
		Message:   "Stories fetched successfully",
		ListStory: stories,
	})
}

func (h *Handler) AddStory(c *gin.Context) {
	accountID := c.GetString(ctxAccountID)

	description := c.PostForm("description")
	if description == "" {
		c.JSON(http.StatusBadRequest, remote.BasicResponse{
			Error:   true,
			Message: "description is required",
		})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, remote.BasicResponse{
			Error:   true,
			Message: "photo file is required",
		})
		return
	}
	if file.Size > 1<<20 {
		c.JSON(http.StatusRequestEntityTooLarge, remote.BasicResponse{
			Error:   true,
			Message: "photo must not exceed 1MB",
		})
		return
	}

	var lon, lat *float64
	if raw := c.PostForm("lon"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, remote.BasicResponse{
				Error:   true,
				Message: "lon must be a number",
			})
			return
		}
		lon = &v
	}
	if raw := c.PostForm("lat"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, remote.BasicResponse{
				Error:   true,
				Message: "lat must be a number",
			})
			return
		}
		lat = &v
	}

	story := h.store.AddStory(h.store.AccountName(accountID), description, lon, lat)
	slog.Debug("Story added", "id", story.ID, "account", accountID)

	c.JSON(http.StatusCreated, remote.BasicResponse{
		Error:   false,
		Message: "Story created successfully",
	})
}
