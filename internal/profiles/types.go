package profiles

import (
	"errors"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidStatus   = errors.New("invalid profile status")
)

// Status is the closed set of workflow states a profile moves through.
type Status string

const (
	StatusUnmatched                 Status = "unmatched"
	StatusMatchedAwaitingConsent    Status = "matched_awaiting_consent"
	StatusConsentAgreedAwaitingDocs Status = "consent_agreed_awaiting_docs"
	StatusConsentDeclined           Status = "consent_declined"
	StatusDocsSentAwaitingEmail     Status = "docs_sent_awaiting_email"
	StatusDocsUnderReview           Status = "docs_under_review"
	StatusDocsNeedFix               Status = "docs_need_fix"
	StatusBankConfirmed             Status = "bank_confirmed"
	StatusSurveyCompleted           Status = "survey_completed"
)

var statusLabels = map[Status]string{
	StatusUnmatched:                 "Не найден в списках",
	StatusMatchedAwaitingConsent:    "Найден в списках (ожидает согласия)",
	StatusConsentAgreedAwaitingDocs: "Оферта согласована (ожидает документы)",
	StatusConsentDeclined:           "Оферта отклонена",
	StatusDocsSentAwaitingEmail:     "Документы отправлены (ожидает email)",
	StatusDocsUnderReview:           "Документы отправлены (ожидают проверку)",
	StatusDocsNeedFix:               "Документы требуют исправления",
	StatusBankConfirmed:             "Подтверждено банком (ждите следующих шагов)",
	StatusSurveyCompleted:           "Опрос пройден",
}

// Label is the human-readable wording stored next to the status for operators.
func (s Status) Label() string {
	return statusLabels[s]
}

// Valid reports whether s belongs to the status vocabulary.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseStatus converts a stored status code into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Consent is the applicant's answer to the offer.
type Consent string

const (
	ConsentUnset Consent = ""
	ConsentYes   Consent = "yes"
	ConsentNo    Consent = "no"
)

// Markers written to the docs and survey columns.
const (
	DocsMarkerSent = "sent"
	SurveyDone     = "yes"
)

// Last-action values recorded for operator-visible history.
const (
	LastActionSurveyCompleted = "survey completed"
	LastActionFixRequested    = "fix requested"
)

// Profile is an applicant record.
type Profile struct {
	ID                 int64
	FullName           string
	NormalizedFullName string
	ChatID             int64
	HasChat            bool
	Username           string
	FirstName          string
	LastName           string
	Status             Status
	StatusLabel        string
	Consent            Consent
	ConsentAt          time.Time
	Email              string
	DocsEmail          string
	DocsEmailAt        time.Time
	Survey             string
	SurveyAt           time.Time
	LastAction         string
	LastActionAt       time.Time
	CreatedAt          time.Time
}

// ChatMeta is what the messenger tells us about the chat owner.
type ChatMeta struct {
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
}

// Patch is a field-level update. Empty fields are left unchanged; timestamps of each
// touched group are stamped by the store.
type Patch struct {
	Status     Status
	Consent    Consent
	Email      string
	DocsEmail  string
	ClearDocs  bool
	Survey     string
	LastAction string
}

// IsZero reports whether the patch would not change anything.
func (p Patch) IsZero() bool {
	return p == Patch{}
}
