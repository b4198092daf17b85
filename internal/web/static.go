package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static/*
var static embed.FS

func StaticFS() (fs.FS, error) {
	return fs.Sub(static, "static")
}

// index serves the single-page client for every routable path; the client
// opens /ws with its own location and the session takes it from there.
func (h *Handler) index(c *gin.Context) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "client missing"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *Handler) static(c *gin.Context) {
	sub, err := StaticFS()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "client missing"})
		return
	}
	c.FileFromFS(c.Param("file"), http.FS(sub))
}
