package flow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCallback is returned for button payloads that do not parse.
var ErrInvalidCallback = errors.New("invalid callback payload")

// Action is a button action.
type Action string

const (
	ActionAgree      Action = "agree"
	ActionDecline    Action = "decline"
	ActionDocsSent   Action = "docs_sent"
	ActionDocsUndo   Action = "docs_undo"
	ActionSurveyDone Action = "survey_done"
	ActionFAQ        Action = "faq"
)

const callbackSeparator = "|"

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionAgree, ActionDecline, ActionDocsSent, ActionDocsUndo, ActionSurveyDone, ActionFAQ:
		return true
	}
	return false
}

// needsProfile reports whether the action mutates a profile and therefore carries its id.
func (a Action) needsProfile() bool {
	return a != ActionFAQ
}

// Callback is the structured payload of an inline button.
type Callback struct {
	Action    Action
	ProfileID int64
}

// String encodes the callback as "action|id" (or just "faq").
func (c Callback) String() string {
	if !c.Action.needsProfile() && c.ProfileID == 0 {
		return string(c.Action)
	}
	return string(c.Action) + callbackSeparator + strconv.FormatInt(c.ProfileID, 10)
}

// ParseCallback decodes and validates a button payload.
func ParseCallback(data string) (Callback, error) {
	data = strings.TrimSpace(data)
	actionRaw, idRaw, hasID := strings.Cut(data, callbackSeparator)
	action := Action(actionRaw)
	if !action.Valid() {
		return Callback{}, fmt.Errorf("%w: unknown action %q", ErrInvalidCallback, actionRaw)
	}
	if !action.needsProfile() {
		return Callback{Action: action}, nil
	}
	if !hasID || idRaw == "" {
		return Callback{}, fmt.Errorf("%w: %s requires a profile id", ErrInvalidCallback, action)
	}
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil || id <= 0 {
		return Callback{}, fmt.Errorf("%w: bad profile id %q", ErrInvalidCallback, idRaw)
	}
	return Callback{Action: action, ProfileID: id}, nil
}
