// Package cgi presents a hook.Request to handler code as if it were running
// as a CGI program: environment variables, stdin and stdout.
package cgi

import (
	"net"
	"strconv"
	"strings"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
)

const (
	serverSoftware   = "steeze-hooks"
	gatewayInterface = "CGI/1.1"
)

// Env computes the CGI environment for req (RFC 3875 meta-variables).
func Env(req hook.Request) map[string]string {
	r := req.Incoming()
	pathInfo := req.PathInfo()

	env := map[string]string{
		"SERVER_SOFTWARE":   serverSoftware,
		"SERVER_PROTOCOL":   r.Proto,
		"GATEWAY_INTERFACE": gatewayInterface,
		"REQUEST_METHOD":    r.Method,
		"REQUEST_URI":       r.URL.RequestURI(),
		"QUERY_STRING":      r.URL.RawQuery,
		"PATH_INFO":         pathInfo,
		"SCRIPT_NAME":       scriptName(r.URL.Path, pathInfo),
	}

	host, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = r.Host
		port = "80"
		if r.TLS != nil {
			port = "443"
		}
	}
	env["SERVER_NAME"] = host
	env["SERVER_PORT"] = port
	if r.TLS != nil {
		env["HTTPS"] = "on"
	}

	if rhost, rport, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		env["REMOTE_ADDR"] = rhost
		env["REMOTE_HOST"] = rhost
		env["REMOTE_PORT"] = rport
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		env["CONTENT_TYPE"] = ct
	}
	if r.ContentLength > 0 {
		env["CONTENT_LENGTH"] = strconv.FormatInt(r.ContentLength, 10)
	}

	for k, v := range r.Header {
		switch k {
		case "Authorization", "Proxy", "Content-Type", "Content-Length":
			continue
		}
		env["HTTP_"+strings.ToUpper(strings.ReplaceAll(k, "-", "_"))] = strings.Join(v, ", ")
	}

	// Credentials are passed through to handler code on purpose. Remove this
	// to keep them away from CGI programs.
	if auth := r.Header.Get("Authorization"); auth != "" {
		env["HTTP_AUTHORIZATION"] = auth
	}
	return env
}

func scriptName(uri, pathInfo string) string {
	if pathInfo != "" && strings.HasSuffix(uri, pathInfo) {
		return uri[:len(uri)-len(pathInfo)]
	}
	return uri
}
