package flow

// Template identifies a reply text. Rendering lives in the templates package.
type Template string

const (
	TemplateWelcome         Template = "welcome"
	TemplateAskName         Template = "ask_name"
	TemplateNotEmail        Template = "not_email"
	TemplateDocsReceived    Template = "docs_received"
	TemplateSurveyPrompt    Template = "survey_prompt"
	TemplateNameTooShort    Template = "name_too_short"
	TemplateNotEligible     Template = "not_eligible"
	TemplateTryLater        Template = "try_later"
	TemplateOffer           Template = "offer"
	TemplateAgreed          Template = "agreed"
	TemplateDocsSentPrompt  Template = "docs_sent_prompt"
	TemplateDeclined        Template = "declined"
	TemplateAskEmail        Template = "ask_email"
	TemplateDocsUndone      Template = "docs_undone"
	TemplateSurveyThanks    Template = "survey_thanks"
	TemplateContactReminder Template = "contact_reminder"
	TemplateFAQ             Template = "faq"
	TemplateGenericError    Template = "generic_error"
	TemplateBankConfirmed   Template = "bank_confirmed"
	TemplateDocsNeedFix     Template = "docs_need_fix"
	TemplateForbidden       Template = "forbidden"
	TemplateBankOKUsage     Template = "bank_ok_usage"
	TemplateBankFixUsage    Template = "bank_fix_usage"
	TemplateWebhookReset    Template = "webhook_reset"
)

// Reply asks the delivery layer to send Template to ChatID. ProfileID feeds the buttons of
// templates that carry callbacks.
type Reply struct {
	ChatID    int64
	Template  Template
	ProfileID int64
}

// Result is the outcome of one event, replies in send order.
type Result struct {
	Replies []Reply
	// Ack is set for button events; the press must be acknowledged whatever the outcome.
	Ack bool
}

func (r *Result) reply(chatID int64, t Template, profileID int64) {
	r.Replies = append(r.Replies, Reply{ChatID: chatID, Template: t, ProfileID: profileID})
}
