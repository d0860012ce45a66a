package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
)

type successResponse struct {
	Success    bool                 `json:"success"`
	Data       any                  `json:"data"`
	Message    string               `json:"message,omitempty"`
	Pagination *pagination.PageInfo `json:"pagination,omitempty"`
}

func respondOK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, successResponse{Success: true, Data: data, Message: message})
}

func respondCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, successResponse{Success: true, Data: data, Message: message})
}

func respondPage(c *gin.Context, data any, info pagination.PageInfo) {
	c.JSON(http.StatusOK, successResponse{Success: true, Data: data, Pagination: &info})
}
