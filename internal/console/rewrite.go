package console

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// SlotPrefix prefixes the global used to hand an awaited value to an assignment
const SlotPrefix = "__kontrakt_capture_"

// awaitPattern matches an optional "[var|let|const] NAME =" followed by an
// expression starting with await, optionally parenthesised. The anchor and
// the word boundary keep "awaitable" and string contents from matching.
var awaitPattern = regexp.MustCompile(`^\s*(?:((?:var|const|let)\s+)?([A-Za-z_$][0-9A-Za-z_$]*)\s*=\s*)?(\(?\s*await\b[\s\S]*)$`)

const (
	wrapperHead = "(async function() { try { return (\n"
	wrapperTail = "\n); } catch (e) { globalThis.ERROR = e; throw e; } }())"
)

// Rewrite is the result of preparing an input for execution
type Rewrite struct {
	// Source is the text to compile
	Source string
	// Target is the assigned name, empty when nothing is captured
	Target string
	// Declaration is "var ", "let ", "const " or empty
	Declaration string
	// Awaited is the matched text from the await keyword (or its opening
	// parenthesis) on, without a trailing semicolon. The keyword is kept: it
	// is compiled inside the async wrapper as written.
	Awaited string
	// Slot is the global the awaited value is handed over in
	Slot string
	// Epilogue binds Target from Slot and removes the slot
	Epilogue string
	// Wrapped reports whether Source is the async wrapper
	Wrapped bool
}

// LineOffset is the number of lines the wrapper adds before the body
func (r Rewrite) LineOffset() int {
	if r.Wrapped {
		return strings.Count(wrapperHead, "\n")
	}
	return 0
}

// RewriteInput turns a top-level await expression into an async wrapper
// that can be compiled as a script. Inputs without a leading await come
// back unchanged.
func RewriteInput(text string) Rewrite {
	m := awaitPattern.FindStringSubmatch(text)
	if m == nil {
		return Rewrite{Source: text}
	}

	body := strings.TrimRightFunc(m[3], unicode.IsSpace)
	body = strings.TrimSuffix(body, ";")

	rw := Rewrite{
		Source:  wrapperHead + body + wrapperTail,
		Awaited: body,
		Wrapped: true,
	}

	if m[2] != "" {
		rw.Target = m[2]
		if decl := strings.TrimSpace(m[1]); decl != "" {
			rw.Declaration = decl + " "
		}
		rw.Slot = SlotPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
		rw.Epilogue = rw.Declaration + rw.Target + " = globalThis." + rw.Slot +
			"; void delete globalThis." + rw.Slot + ";"
	}
	return rw
}
