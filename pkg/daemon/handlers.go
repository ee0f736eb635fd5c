package daemon

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psdlabs/voltguard/pkg/config"
	"github.com/psdlabs/voltguard/pkg/monitor"
	"github.com/psdlabs/voltguard/pkg/version"
)

// statusResponse extends the loop snapshot with load-source diagnostics.
type statusResponse struct {
	monitor.Status
	GPUProbe string `json:"gpuProbe"`
}

func getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, statusResponse{
		Status:   controlLoop.Status(),
		GPUProbe: loadSource.LastGPUProbe(),
	})
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
