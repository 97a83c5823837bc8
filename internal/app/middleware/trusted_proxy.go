package middleware

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/app/serializers"
	"resident-directory-service/pkg/logger"
)

// TrustedProxies 直连地址属于受信任代理时，标记请求的 X-Forwarded-* 头可信
// proxies 可以是单个IP或CIDR，非法项被忽略
func TrustedProxies(proxies []string) gin.HandlerFunc {
	prefixes := parseProxies(proxies)

	return func(c *gin.Context) {
		if len(prefixes) > 0 {
			if addr, err := netip.ParseAddr(c.RemoteIP()); err == nil {
				addr = addr.Unmap()
				for _, p := range prefixes {
					if p.Contains(addr) {
						c.Set(serializers.ForwardedTrustedKey, true)
						break
					}
				}
			}
		}
		c.Next()
	}
}

func parseProxies(proxies []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, raw := range proxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				logger.Warning("忽略非法的受信任代理 %q: %v", raw, err)
				continue
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			logger.Warning("忽略非法的受信任代理 %q: %v", raw, err)
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}
