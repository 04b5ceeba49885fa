package hook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOptionsDefaults(t *testing.T) {
	o := ParseOptions(nil)
	assert.True(t, o.AutoReload)
	assert.False(t, o.Debug)
	assert.Empty(t, o.RootPkg)
	assert.Nil(t, o.SearchPath)
}

func TestParseOptions(t *testing.T) {
	sep := string(filepath.ListSeparator)
	o := ParseOptions(map[string]string{
		OptAutoReload: "Off",
		OptDebug:      "YES",
		OptRootPkg:    " site ",
		OptSearchPath: "/srv/a" + sep + "/srv/b",
	})
	assert.False(t, o.AutoReload)
	assert.True(t, o.Debug)
	assert.Equal(t, "site", o.RootPkg)
	assert.Equal(t, []string{"/srv/a", "/srv/b"}, o.SearchPath)
}

func TestParseOptionsSearchPathSpellings(t *testing.T) {
	o := ParseOptions(map[string]string{OptLegacySearchPath: "/old"})
	assert.Equal(t, []string{"/old"}, o.SearchPath)

	o = ParseOptions(map[string]string{OptLegacySearchPath: "/old", OptSearchPath: "/new"})
	assert.Equal(t, []string{"/new"}, o.SearchPath)

	o = ParseOptions(map[string]string{OptSearchPath: "  "})
	assert.Nil(t, o.SearchPath)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "On", "yes"} {
		assert.True(t, ParseBool(s, false), s)
	}
	for _, s := range []string{"0", "FALSE", "off", "no", ""} {
		assert.False(t, ParseBool(s, true), s)
	}
	assert.True(t, ParseBool("maybe", true))
	assert.False(t, ParseBool("maybe", false))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "declined", Declined.String())
	assert.Equal(t, "500", InternalServerError.String())
	assert.Equal(t, InternalServerError, Aborted)
	assert.True(t, Result(404).IsHTTPStatus())
	assert.False(t, Declined.IsHTTPStatus())
	assert.False(t, OK.IsHTTPStatus())
}

func TestAbortMessages(t *testing.T) {
	assert.Equal(t, "abort: code 403, status 403", AbortWith(403, 403).Error())
	assert.Equal(t, "abort: code 500", AbortCode(InternalServerError).Error())
	assert.True(t, IsWriteFailure((&WriteError{Err: assert.AnError}).Error()))
	assert.False(t, IsWriteFailure("read failed"))
}
