package pages

import (
	"regexp"
	"strings"

	"admin-e2e/internal/domain/entity"
)

// Selector contract the dashboard must keep.
const (
	adminPath = "/admin"

	createToolModal  = "#create-tool-modal"
	deleteConfirmBox = "#delete-confirmation-modal"
	executionModal   = "#tool-execution-modal"
	toolsTableRows   = "#tools-table tbody tr"
	toolResult       = ".tool-result"
	toolParamsField  = "tool-params"
	submitButton     = `button[type="submit"]`
	toolsTab         = "tools"
	emailField       = "email"
	passwordField    = "password"
)

var (
	loginURL = regexp.MustCompile(`login`)
	adminURL = regexp.MustCompile(`.*admin`)
)

func field(name string) entity.Locator {
	name = strings.ReplaceAll(name, `\`, `\\`)
	name = strings.ReplaceAll(name, `"`, `\"`)
	return entity.Locate(`[name="` + name + `"]`)
}

func button(text string) entity.Locator {
	return entity.Locate("button").WithText(text)
}

func tab(name string) entity.Locator {
	return entity.Locate("#tab-" + name)
}

func panel(name string) entity.Locator {
	return entity.Locate("#" + name + "-panel")
}
