package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thrivekit/thrivekit/internal/implementation/domain"
)

func (s *Server) CreateImplementation(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.implSvc.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrCodeTaken) {
			AbortWithError(c, codeTakenError())
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdateImplementation(c *gin.Context) {
	var req domain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.implSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, domain.ErrCodeTaken) {
			AbortWithError(c, codeTakenError())
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetImplementation(c *gin.Context) {
	resp, err := s.implSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
