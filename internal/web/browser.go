package web

import (
	"log/slog"
	"net"

	"github.com/pkg/browser"
)

// Browser opens the picker page in the user's default browser.
type Browser struct {
	URL  string
	open func(url string) error
}

// NewBrowser returns a launcher for the page served on listenAddr.
func NewBrowser(listenAddr string) *Browser {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host, port = "127.0.0.1", "5000"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return &Browser{URL: "http://" + net.JoinHostPort(host, port) + "/", open: browser.OpenURL}
}

func (b *Browser) OpenBrowser() error {
	slog.Info("opening skin picker", "url", b.URL)
	return b.open(b.URL)
}
