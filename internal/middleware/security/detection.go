package security

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"bakery/internal/log"
)

// TrustedProxies are the networks allowed to set X-Forwarded-For / X-Real-IP.
// Passed to gin's SetTrustedProxies so c.ClientIP() resolves the real client.
var TrustedProxies = []string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	scannerAgents  = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan"}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

const maxURLLength = 2048

// Detector flags requests that look like probing. It only logs and counts;
// the request continues.
type Detector struct {
	suspicious int64
	logger     *log.Logger
}

func NewDetector(logger *log.Logger) *Detector {
	return &Detector{logger: logger.WithComponent(log.ComponentSecurity)}
}

// IsSuspicious reports whether r matches a known probe pattern.
func IsSuspicious(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			return true
		}
	}

	ua := strings.ToLower(r.UserAgent())
	for _, a := range scannerAgents {
		if strings.Contains(ua, a) {
			return true
		}
	}

	for _, m := range unusualMethods {
		if r.Method == m {
			return true
		}
	}

	return len(r.URL.String()) > maxURLLength
}

func (d *Detector) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsSuspicious(c.Request) {
			atomic.AddInt64(&d.suspicious, 1)
			d.logger.WarnContext(c.Request.Context(), "Suspicious request",
				log.FieldMethod, c.Request.Method,
				log.FieldPath, c.Request.URL.Path,
				log.FieldClientIP, c.ClientIP(),
				log.FieldUserAgent, c.Request.UserAgent())
		}
		c.Next()
	}
}

// Suspicious returns how many requests have been flagged.
func (d *Detector) Suspicious() int64 {
	return atomic.LoadInt64(&d.suspicious)
}
