// Package locatorjs holds the in-page scripts both browser drivers use to
// resolve an entity.Locator, so that selector semantics do not depend on the
// driver in use.
package locatorjs

import (
	"encoding/json"
	"strings"

	"admin-e2e/internal/domain/entity"
)

const helpers = `
function resolve(chain, all) {
	let scope = [document];
	for (const step of chain) {
		const next = [];
		const needle = (step.hasText || '').toLowerCase();
		for (const root of scope) {
			for (const el of root.querySelectorAll(step.selector)) {
				if (needle && !(el.textContent || '').toLowerCase().includes(needle)) continue;
				if (!next.includes(el)) next.push(el);
			}
		}
		scope = next;
	}
	return all ? scope : (scope[0] || null);
}
function visible(el) {
	if (!el || !el.isConnected) return false;
	const style = window.getComputedStyle(el);
	if (style.visibility === 'hidden' || style.display === 'none') return false;
	const rect = el.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
}
`

// Function bodies take the locator chain as their first argument.
var (
	First   = wrap(`(chain) => {`, `return resolve(chain, false); }`)
	All     = wrap(`(chain) => {`, `return resolve(chain, true); }`)
	Visible = wrap(`(chain) => {`, `return visible(resolve(chain, false)); }`)
	Hidden  = wrap(`(chain) => {`, `return !visible(resolve(chain, false)); }`)
	Count   = wrap(`(chain) => {`, `return resolve(chain, true).length; }`)

	// Select returns "ok", "missing" or "no-option". Options match by value,
	// then by label.
	Select = wrap(`(chain, value) => {`, `
	const el = resolve(chain, false);
	if (!el) return 'missing';
	const options = Array.from(el.options || []);
	const opt = options.find(o => o.value === value) || options.find(o => o.label === value || o.text.trim() === value);
	if (!opt) return 'no-option';
	el.value = opt.value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return 'ok';
}`)
)

const URLMatch = `(pattern) => new RegExp(pattern).test(window.location.href)`

func wrap(open, body string) string {
	return open + helpers + body
}

// Chain converts a locator into the JSON-friendly argument the scripts expect.
func Chain(loc entity.Locator) []entity.LocatorStep {
	return loc.Steps
}

// Call renders fn applied to args as a self-contained expression, for drivers
// that evaluate expressions rather than functions with arguments.
func Call(fn string, args ...any) (string, error) {
	encoded := make([]string, 0, len(args))
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", err
		}
		encoded = append(encoded, string(b))
	}
	return "(" + fn + ")(" + strings.Join(encoded, ", ") + ")", nil
}
