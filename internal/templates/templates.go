// Package templates renders reply identifiers into message text and inline buttons.
//
// Texts use a small markdown subset (**bold**, *italic*) that the messenger adapter turns
// into its own markup.
package templates

import (
	"fmt"
	"strings"

	"github.com/memohai/scholarbot/internal/config"
	"github.com/memohai/scholarbot/internal/flow"
)

// Button is an inline button. Exactly one of URL and Callback is set.
type Button struct {
	Text     string
	URL      string
	Callback string
}

// Message is a rendered reply. Buttons are laid out as rows.
type Message struct {
	Text    string
	Buttons [][]Button
}

// Renderer renders templates with the configured document links.
type Renderer struct {
	links config.LinksConfig
}

// NewRenderer creates a renderer.
func NewRenderer(links config.LinksConfig) *Renderer {
	return &Renderer{links: links}
}

// Render produces the message for t. profileID is embedded in callback buttons.
func (r *Renderer) Render(t flow.Template, profileID int64) (Message, error) {
	fn, ok := renderers[t]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", t)
	}
	return fn(r, profileID), nil
}

// Plain wraps preformatted text, used for operator reports.
func Plain(text string) Message {
	return Message{Text: text}
}

var renderers = map[flow.Template]func(r *Renderer, profileID int64) Message{
	flow.TemplateWelcome: func(r *Renderer, _ int64) Message {
		return Message{
			Text: "Добро пожаловать в бот программы «Альфа-Будущее | Стипендии» 🎓✨\n\n" +
				"Этот бот создан, чтобы вы могли легко оформить документы на стипендию.\n" +
				"Продолжая взаимодействие с ботом, вы даёте своё Согласие на обработку персональных данных.",
			Buttons: urlRow("📄 Согласие на обработку персональных данных", r.links.Policy),
		}
	},
	flow.TemplateAskName: func(*Renderer, int64) Message {
		return Plain("Введите, пожалуйста, ваши ФИО (полностью, как в паспорте).\n\n*Пример: Иванов Иван Иванович*")
	},
	flow.TemplateNotEmail: func(*Renderer, int64) Message {
		return Plain("Похоже, это не email. Пришлите адрес в формате *name@example.com*.")
	},
	flow.TemplateDocsReceived: func(r *Renderer, _ int64) Message {
		return Plain("Спасибо! Команда Альфа-Банка проверит ваши документы и свяжется с вами с почты **" +
			r.links.ContactEmail + "** в ближайшее время. ✅")
	},
	flow.TemplateSurveyPrompt: func(r *Renderer, id int64) Message {
		return Message{
			Text: "**👉 Шаг 2.** Пожалуйста, заполни ту же информацию в короткой форме.\n" + r.links.Form,
			Buttons: [][]Button{{
				{Text: "Перейти к форме", URL: r.links.Form},
				{Text: "✅ Опрос пройден", Callback: flow.Callback{Action: flow.ActionSurveyDone, ProfileID: id}.String()},
			}},
		}
	},
	flow.TemplateNameTooShort: func(*Renderer, int64) Message {
		return Plain("Слишком коротко. Пришлите ФИО полностью.")
	},
	flow.TemplateNotEligible: func(r *Renderer, _ int64) Message {
		return Plain("К сожалению, вы не являетесь рекомендованным претендентом, либо ФИО введено неверно. " +
			"Если это уже не первая попытка - напишите на почту " + r.links.ContactEmail +
			" письмо с темой \"Ошибка в боте_ФИО\"\n\nПопробуйте ещё раз.")
	},
	flow.TemplateTryLater: func(*Renderer, int64) Message {
		return Plain("Сервис временно недоступен. Попробуйте, пожалуйста, ещё раз через несколько минут.")
	},
	flow.TemplateOffer: func(r *Renderer, id int64) Message {
		return Message{
			Text: "Ура! Вы в списке претендентов на стипендию.\n\n" +
				"Для получения статуса стипендиата ознакомьтесь с офертой (Приложение 4 Положения).",
			Buttons: [][]Button{
				{{Text: "Ознакомиться с офертой", URL: r.links.OfferDoc}},
				{
					{Text: "Согласен с офертой", Callback: flow.Callback{Action: flow.ActionAgree, ProfileID: id}.String()},
					{Text: "Не согласен", Callback: flow.Callback{Action: flow.ActionDecline, ProfileID: id}.String()},
				},
			},
		}
	},
	flow.TemplateAgreed: func(r *Renderer, _ int64) Message {
		return Message{
			Text: "Отлично! ✅\n\n" +
				"Чтобы стать стипендиатом, нужно выполнить несколько шагов:\n\n" +
				"👉 Шаг 1. Отправить на почту **" + r.links.ContactEmail + "** пакет документов одним письмом до **30 сентября**...\n" +
				"Тема письма **\"Стипендиат 2025 ФИО полностью\"**",
			Buttons: [][]Button{
				{{Text: "Заявка на присоединение к оферте", URL: r.links.Application}},
				{{Text: "Согласие на обработку персональных данных", URL: r.links.SOPD}},
			},
		}
	},
	flow.TemplateDocsSentPrompt: func(_ *Renderer, id int64) Message {
		return Message{
			Text: "После отправки документов нажмите кнопку ниже.\n\n" +
				"*Внимание: нажимайте кнопку «Я отправил(а) документы на почту!» только после того, как действительно отправили письмо с пакетом документов.*",
			Buttons: callbackRow("✅ Я отправил(а) документы на почту!", flow.ActionDocsSent, id),
		}
	},
	flow.TemplateDeclined: func(*Renderer, int64) Message {
		return Plain("К сожалению, без согласия с офертой вы не можете стать стипендиатом. " +
			"Если решите изменить решение — просто нажмите на Согласен с офертой.")
	},
	flow.TemplateAskEmail: func(_ *Renderer, id int64) Message {
		return Message{
			Text: "Укажите, пожалуйста, **email**, с которого вы отправили документы (например, name@example.com).\n\n" +
				"*Если нажали кнопку по ошибке — можно отменить отметку.*",
			Buttons: callbackRow("❌ Ошибся, ещё не отправил(а) документы", flow.ActionDocsUndo, id),
		}
	},
	flow.TemplateDocsUndone: func(*Renderer, int64) Message {
		return Plain("Ок, отметку сняли. Нажмите «Я отправил(а) документы на почту!» после реальной отправки письма.")
	},
	flow.TemplateSurveyThanks: func(*Renderer, int64) Message {
		return Plain("Спасибо! ✅ Ваши ответы зафиксированы. Команда оргкомитета вернётся к вам по почте в ближайшее время.")
	},
	flow.TemplateContactReminder: func(r *Renderer, _ int64) Message {
		return Plain("Напоминаем, что по всем вопросам можно обращаться на официальную почту программы " + r.links.ContactEmail)
	},
	flow.TemplateFAQ: func(r *Renderer, _ int64) Message {
		return Plain(faqText(r.links.ContactEmail))
	},
	flow.TemplateGenericError: func(*Renderer, int64) Message {
		return Plain("Ошибка.")
	},
	flow.TemplateBankConfirmed: func(r *Renderer, _ int64) Message {
		var b strings.Builder
		b.WriteString("Привет!\n")
		b.WriteString("Банк подтвердил на почте присоединение к оферте.\n\n")
		b.WriteString("Все формальные вопросы решены, жди обращения от бота по следующим шагам.\n")
		b.WriteString("А также вступай в Альфа Клуб для студентов — карьерно-образовательную платформу ")
		b.WriteString("для лучших студентов со всей страны ")
		b.WriteString(r.links.Club)
		return Plain(b.String())
	},
	flow.TemplateDocsNeedFix: func(r *Renderer, _ int64) Message {
		return Plain("Привет!\n\n" +
			"📬 Команда Альфа-Банка проверила твои документы.\n" +
			"**Сейчас принять их не можем.**\n\n" +
			"Причина указана в письме на твою почту.\n\n" +
			"Что сделать дальше:\n" +
			"• Внеси правки по замечаниям из письма.\n" +
			"• Отправь обновлённый пакет на почту **" + r.links.ContactEmail + "**.\n\n" +
			"Как пришлёшь корректный комплект — мы оперативно перепроверим и вернёмся с подтверждением.")
	},
	flow.TemplateForbidden: func(*Renderer, int64) Message {
		return Plain("Недостаточно прав.")
	},
	flow.TemplateBankOKUsage: func(*Renderer, int64) Message {
		return Plain("Укажите номер строки: /bank_ok_row 257")
	},
	flow.TemplateBankFixUsage: func(*Renderer, int64) Message {
		return Plain("Укажите номер(а) строк: /bank_fix_row 12 18 25-30")
	},
	flow.TemplateWebhookReset: func(*Renderer, int64) Message {
		return Plain("Webhook was reset due to issues")
	},
}

func faqText(contact string) string {
	return "**Часто задаваемые вопросы:**\n\n" +
		"1️⃣ **Когда будут результаты?**\n" +
		"Результаты публикации на сайте — после проверки документов (сентябрь).\n\n" +
		"2️⃣ **Какие документы нужны?**\n" +
		"• Заявка на присоединение к оферте (скан + .docx)\n" +
		"• Согласие на обработку персональных данных\n" +
		"• Копия паспорта\n" +
		"• Справка с места учёбы\n\n" +
		"3️⃣ **Куда отправлять документы?**\n" +
		"На почту: **" + contact + "**\n\n" +
		"4️⃣ **Нужен ли оригинал?**\n" +
		"Нет в письме, достаточно сканов.\n\n" +
		"Позже понадобятся оригиналы СОПД по почте, адрес и дату сообщим через бот.\n\n" +
		"5️⃣ **Как заполнять заявку к оферте?**\n" +
		"Можно и ручкой, можно и на компьютере, важно чтобы информация читалась.\n\n" +
		"6️⃣ **Как понять, что мои документы дошли?**\n" +
		"Вы получите подтверждение по email от команды программы.\n\n" +
		"7️⃣ **Могу ли узнать весь состав стипендиатов и когда?**\n" +
		"До официального объявления результатов на сайте данная информация конфиденциальна."
}

func urlRow(text, url string) [][]Button {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	return [][]Button{{{Text: text, URL: url}}}
}

func callbackRow(text string, action flow.Action, profileID int64) [][]Button {
	return [][]Button{{{Text: text, Callback: flow.Callback{Action: action, ProfileID: profileID}.String()}}}
}
