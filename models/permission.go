package models

import "sort"

// Permission actions a group can be granted on a model.
const (
	ActionAdd    = "add"
	ActionChange = "change"
	ActionDelete = "delete"
	ActionView   = "view"
)

// PermissionModels are the model names used in permission codenames.
var PermissionModels = []string{
	"article",
	"comment",
	"file",
	"footerlink",
	"gallery",
	"genericlink",
	"group",
	"hardware",
	"hardwarerental",
	"profile",
	"profilelink",
	"project",
	"section",
	"sponsor",
	"tag",
	"user",
}

var permissionActions = []string{ActionAdd, ActionChange, ActionDelete, ActionView}

// Codename joins an action and a model name, e.g. "change_article".
func Codename(action, model string) string {
	return action + "_" + model
}

// AllCodenames lists every grantable permission in sorted order.
func AllCodenames() []string {
	out := make([]string, 0, len(PermissionModels)*len(permissionActions))
	for _, m := range PermissionModels {
		for _, a := range permissionActions {
			out = append(out, Codename(a, m))
		}
	}
	sort.Strings(out)
	return out
}

// IsKnownCodename reports whether codename names a grantable permission.
func IsKnownCodename(codename string) bool {
	for _, m := range PermissionModels {
		for _, a := range permissionActions {
			if Codename(a, m) == codename {
				return true
			}
		}
	}
	return false
}
