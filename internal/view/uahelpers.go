// internal/view/uahelpers.go
//
// User-Agent-related template helpers.  Each takes the *requestinfo.Info
// that the page data carries and tolerates nil, so templates rendered
// outside a request (tests, partials) still execute.
package view

import (
	"html/template"

	"github.com/yanizio/playeradmin/internal/requestinfo"
)

// uaFuncMap returns helpers keyed off *requestinfo.Info.
func uaFuncMap() template.FuncMap {
	return template.FuncMap{
		"browser": func(i *requestinfo.Info) string {
			if i == nil {
				return ""
			}
			return i.UA.Browser
		},
		"os": func(i *requestinfo.Info) string {
			if i == nil {
				return ""
			}
			return i.UA.OS
		},
		"device": func(i *requestinfo.Info) string {
			if i == nil {
				return ""
			}
			return i.UA.Device
		},
		"isBot": func(i *requestinfo.Info) bool { return i != nil && i.UA.IsBot },
	}
}
