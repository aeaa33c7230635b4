package handlers

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/version"
)

// localIP returns the first non-loopback IPv4 address of the host.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	return ""
}

// HealthHandler is the liveness probe. It sits behind admin auth since
// build metadata would give the honeypot away.
func HealthHandler(c *gin.Context) {
	info := version.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     info.Service,
		"version":     info.Version,
		"git_commit":  info.GitCommit,
		"build_time":  info.BuildTime,
		"internal_ip": localIP(),
	})
}
