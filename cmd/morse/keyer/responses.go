package keyer

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Messages the keyer answers with in command mode.
const (
	ResponseCommandEntry = " K"
	ResponseCommandExit  = " * K" // AR K
	ResponseOK           = " R"
	ResponseNotOK        = " ?"
	ResponseError        = " #"
	ResponsePowerOn      = "OK"
)

var responses = map[string]string{
	"entry":    ResponseCommandEntry,
	"exit":     ResponseCommandExit,
	"ok":       ResponseOK,
	"not-ok":   ResponseNotOK,
	"error":    ResponseError,
	"power-on": ResponsePowerOn,
}

// ResponseByName looks up a canned response, case-insensitively.
func ResponseByName(name string) (string, bool) {
	text, ok := responses[strings.ToLower(strings.TrimSpace(name))]
	return text, ok
}

// ResponseNames lists the names ResponseByName accepts, sorted.
func ResponseNames() []string {
	names := lo.Keys(responses)
	slices.Sort(names)
	return names
}
