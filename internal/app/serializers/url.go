// Package serializers renders models into their API representation.
package serializers

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ForwardedTrustedKey 上下文键，为 true 时请求来自受信任代理
const ForwardedTrustedKey = "forwardedTrusted"

// RequestBaseURL 返回请求的 scheme://host；只有受信任代理转发的请求才考虑 X-Forwarded-* 头
// 没有 Host 时返回空串
func RequestBaseURL(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	r := c.Request
	forwarded := func(name string) string {
		if !c.GetBool(ForwardedTrustedKey) {
			return ""
		}
		return firstHeaderValue(r.Header.Get(name))
	}

	host := forwarded("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if host == "" {
		return ""
	}
	if port := forwarded("X-Forwarded-Port"); port != "" {
		if _, _, err := net.SplitHostPort(host); err != nil {
			host = net.JoinHostPort(host, port)
		}
	}

	scheme := strings.ToLower(forwarded("X-Forwarded-Proto"))
	if scheme != "http" && scheme != "https" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	return scheme + "://" + host
}

// AbsoluteURL 将相对地址补全为绝对地址，已经是绝对地址时原样返回
func AbsoluteURL(c *gin.Context, location string) string {
	if location == "" {
		return ""
	}
	if u, err := url.Parse(location); err == nil && u.IsAbs() {
		return location
	}
	base := RequestBaseURL(c)
	if base == "" {
		return location
	}
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return base + location
}

// PageURL 返回当前请求地址替换 page 参数后的绝对地址
func PageURL(c *gin.Context, page int) string {
	if c == nil || c.Request == nil {
		return ""
	}
	u := *c.Request.URL
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	u.Scheme, u.Host = "", ""
	return AbsoluteURL(c, u.RequestURI())
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
