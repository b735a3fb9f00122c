package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"demo/interview/internal/model"
)

type ProfileService interface {
	CreateUser(ctx context.Context, in model.CreateProfileInput) (model.UserProfile, error)
	ListProfiles(ctx context.Context, f model.ProfileFilter) ([]model.UserProfile, error)
}

func RegisterProfileRoutes(r gin.IRouter, svc ProfileService) {
	r.GET("/profiles", listProfiles(svc))
	r.POST("/profiles", createProfile(svc))
}

func listProfiles(svc ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := model.ProfileFilter{Search: c.Query("search")}
		for _, q := range []struct {
			name string
			dst  **bool
		}{
			{"is_staff", &f.IsStaff},
			{"is_active", &f.IsActive},
			{"is_superuser", &f.IsSuperuser},
			{"is_admin", &f.IsAdmin},
		} {
			raw, ok := c.GetQuery(q.name)
			if !ok {
				continue
			}
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(c, http.StatusBadRequest, codeInvalidFilter, fmt.Sprintf("%s=%q is not a boolean", q.name, raw))
				return
			}
			*q.dst = &v
		}

		profiles, err := svc.ListProfiles(c.Request.Context(), f)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, profiles)
	}
}

func createProfile(svc ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in model.CreateProfileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}
		p, err := svc.CreateUser(c.Request.Context(), in)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}
