package ipinfo

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client resolves network addresses to cities through ipinfo.io.
type Client struct {
	BaseURL string
	Token   string
	http    *resty.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://ipinfo.io"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		http:    resty.New().SetTimeout(timeout),
	}
}

type response struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Bogon   bool   `json:"bogon"`
}

// City looks up ip. Loopback, private or empty addresses are resolved as the
// server's own address, which is what a locally run instance would see.
func (c *Client) City(ctx context.Context, ip string) (string, error) {
	url := c.BaseURL + "/json"
	if public(ip) {
		url = c.BaseURL + "/" + ip + "/json"
	}

	var out response
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if c.Token != "" {
		req.SetQueryParam("token", c.Token)
	}
	resp, err := req.Get(url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("ipinfo lookup: %s; body: %s", resp.Status(), resp.String())
	}
	return strings.TrimSpace(out.City), nil
}

func public(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !(parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast())
}
