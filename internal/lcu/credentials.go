package lcu

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrClientNotRunning is returned by Discover when no League client process was found.
var ErrClientNotRunning = errors.New("league client is not running")

// uxProcess is the client process whose command line carries the API credentials.
const uxProcess = "LeagueClientUx"

var (
	portRe  = regexp.MustCompile(`--app-port=["]?(\d+)`)
	tokenRe = regexp.MustCompile(`--remoting-auth-token=["]?([^\s"]+)`)
)

// Credentials address one running client's local API.
type Credentials struct {
	Port  string
	Token string
}

func (c Credentials) Valid() bool {
	return c.Port != "" && c.Token != ""
}

// ParseCommandLine extracts the credentials from a LeagueClientUx command line.
func ParseCommandLine(cmdline string) (Credentials, bool) {
	portMatch := portRe.FindStringSubmatch(cmdline)
	tokenMatch := tokenRe.FindStringSubmatch(cmdline)
	if portMatch == nil || tokenMatch == nil {
		return Credentials{}, false
	}
	return Credentials{Port: portMatch[1], Token: tokenMatch[1]}, true
}

// Discover finds the running client and reads its credentials.
func Discover(ctx context.Context) (Credentials, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("list processes: %w", err)
	}

	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.HasPrefix(name, uxProcess) {
			continue
		}
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			continue
		}
		if creds, ok := ParseCommandLine(cmdline); ok {
			return creds, nil
		}
	}

	return Credentials{}, ErrClientNotRunning
}
