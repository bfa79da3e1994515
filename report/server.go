package report

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter creates a Gin engine serving the run artifacts out of dir.
// Files are read per request so a tracker run behind the server is picked
// up without a restart.
func NewRouter(dir string, mode string, startTime time.Time) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(startTime).Round(time.Second).String(),
		})
	})

	r.GET("/", servePage(filepath.Join(dir, "index.html")))
	r.GET("/api/latest", serveJSON(filepath.Join(dir, "latest.json")))
	r.GET("/api/history", serveJSON(filepath.Join(dir, "history.json")))

	return r
}

// serveJSON returns a handler that replays a JSON artifact from disk.
// 404 means the tracker has not produced that artifact yet.
func serveJSON(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no run recorded yet"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", raw)
	}
}

func servePage(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := os.Stat(path); err != nil {
			c.String(http.StatusNotFound, "no report generated yet\n")
			return
		}
		c.File(path)
	}
}
