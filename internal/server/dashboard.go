package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const reportFilename = "relatorio-referralhub.pdf"

func (s *Server) DashboardOverview(c *gin.Context) {
	overview, err := s.dashboardSvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, overview, "")
}

func (s *Server) DashboardChart(c *gin.Context) {
	chart, err := s.dashboardSvc.Chart(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, chart, "")
}

func (s *Server) DashboardReport(c *gin.Context) {
	doc, err := s.dashboardSvc.Report(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+reportFilename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
