package network

import fhttp "github.com/bogdanfinn/fhttp"

const (
	HeaderAccept                  = "accept"
	HeaderAcceptEncoding          = "accept-encoding"
	HeaderAcceptLanguage          = "accept-language"
	HeaderCacheControl            = "cache-control"
	HeaderUpgradeInsecureRequests = "upgrade-insecure-requests"
	HeaderUserAgent               = "user-agent"
)

// headerOrder is the order a desktop Chrome sends these headers in.
var headerOrder = []string{
	HeaderCacheControl,
	HeaderUpgradeInsecureRequests,
	HeaderUserAgent,
	HeaderAccept,
	HeaderAcceptEncoding,
	HeaderAcceptLanguage,
}

// BrowserHeaders returns the fixed header set sent with every listing request.
func BrowserHeaders() map[string]string {
	return map[string]string{
		HeaderAccept:                  "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		HeaderAcceptEncoding:          "gzip, deflate, sdch, br",
		HeaderAcceptLanguage:          "en-GB,en;q=0.8,en-US;q=0.6,ml;q=0.4",
		HeaderCacheControl:            "max-age=0",
		HeaderUpgradeInsecureRequests: "1",
		HeaderUserAgent:               "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/74.0.3729.131 Safari/537.36",
	}
}

func applyHeaders(req *fhttp.Request, headers map[string]string) {
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	order := make([]string, 0, len(headers))
	for _, key := range headerOrder {
		if _, ok := headers[key]; ok {
			order = append(order, key)
		}
	}
	req.Header[fhttp.HeaderOrderKey] = order
}
