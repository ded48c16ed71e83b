package flow

import (
	"errors"
	"testing"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		in   string
		want Callback
	}{
		{"agree|42", Callback{Action: ActionAgree, ProfileID: 42}},
		{"decline|1", Callback{Action: ActionDecline, ProfileID: 1}},
		{"docs_sent|7", Callback{Action: ActionDocsSent, ProfileID: 7}},
		{"docs_undo|7", Callback{Action: ActionDocsUndo, ProfileID: 7}},
		{"survey_done|9", Callback{Action: ActionSurveyDone, ProfileID: 9}},
		{"faq", Callback{Action: ActionFAQ}},
		{"faq|", Callback{Action: ActionFAQ}},
		{" agree|3 ", Callback{Action: ActionAgree, ProfileID: 3}},
	}
	for _, tc := range cases {
		got, err := ParseCallback(tc.in)
		if err != nil {
			t.Fatalf("ParseCallback(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseCallback(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseCallbackRejects(t *testing.T) {
	for _, in := range []string{"", "agree", "agree|", "agree|abc", "agree|-1", "agree|0", "hack|1", "agree|1|2"} {
		if _, err := ParseCallback(in); !errors.Is(err, ErrInvalidCallback) {
			t.Errorf("ParseCallback(%q) error = %v, want ErrInvalidCallback", in, err)
		}
	}
}

func TestCallbackString(t *testing.T) {
	if got := (Callback{Action: ActionDocsSent, ProfileID: 15}).String(); got != "docs_sent|15" {
		t.Fatalf("unexpected encoding: %s", got)
	}
	if got := (Callback{Action: ActionFAQ}).String(); got != "faq" {
		t.Fatalf("unexpected encoding: %s", got)
	}
	round, err := ParseCallback(Callback{Action: ActionSurveyDone, ProfileID: 3}.String())
	if err != nil || round != (Callback{Action: ActionSurveyDone, ProfileID: 3}) {
		t.Fatalf("round trip = %+v, %v", round, err)
	}
}
