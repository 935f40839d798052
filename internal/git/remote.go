package git

import (
	"strconv"
	"strings"
)

// Remote holds the components parsed from a git remote URL.
type Remote struct {
	// Host is the forge hostname, e.g. "github.com".
	Host string
	// Path is the repository path, e.g. "user/repo".
	Path string
	// Port is the port number, 0 when the URL has none.
	Port int
}

// HostKey renders the host with its port, matching the key format used in
// host-scoped configuration.
func (r Remote) HostKey() string {
	if r.Port != 0 {
		return r.Host + ":" + strconv.Itoa(r.Port)
	}
	return r.Host
}

// RemoteKey renders host, port and path, matching the key format used in
// remote-scoped configuration.
func (r Remote) RemoteKey() string {
	return r.HostKey() + "/" + r.Path
}

// ParseRemoteURL parses a git remote URL. Supported formats:
//
//	https://<host>[:<port>]/<user>/<repo>[.git]
//	ssh://git@<host>[:<port>]/<user>/<repo>[.git]
//	git@<host>:<user>/<repo>[.git]
func ParseRemoteURL(url string) (Remote, bool) {
	if rest, ok := strings.CutPrefix(url, "https://"); ok {
		return parseHostSlashPath(rest)
	}
	if rest, ok := strings.CutPrefix(url, "ssh://git@"); ok {
		return parseHostSlashPath(rest)
	}
	if rest, ok := strings.CutPrefix(url, "git@"); ok {
		host, path, found := strings.Cut(rest, ":")
		if !found || host == "" || path == "" {
			return Remote{}, false
		}
		return Remote{Host: host, Path: strings.TrimSuffix(path, ".git")}, true
	}
	return Remote{}, false
}

func parseHostSlashPath(rest string) (Remote, bool) {
	hostPort, path, found := strings.Cut(rest, "/")
	if !found || path == "" {
		return Remote{}, false
	}

	host := hostPort
	port := 0
	if i := strings.LastIndex(hostPort, ":"); i >= 0 {
		p, err := strconv.Atoi(hostPort[i+1:])
		if err != nil || p <= 0 || p > 65535 {
			return Remote{}, false
		}
		host = hostPort[:i]
		port = p
	}
	if host == "" {
		return Remote{}, false
	}

	return Remote{Host: host, Path: strings.TrimSuffix(path, ".git"), Port: port}, true
}
