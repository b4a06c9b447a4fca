package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// Keyboard какую клавиатуру показать вместе с ответом
type Keyboard int

const (
	// KeyboardKeep не трогать текущую клавиатуру
	KeyboardKeep Keyboard = iota
	KeyboardRemove
	KeyboardPropertyType
	KeyboardDistricts
	KeyboardBedrooms
	KeyboardYesNo
)

// Reply одно исходящее сообщение пользователю, без привязки к Telegram
type Reply struct {
	Text           string
	HTML           bool
	DisablePreview bool
	Keyboard       Keyboard
}

const (
	CommandStart  = "start"
	CommandRent   = "rent"
	CommandCancel = "cancel"
	CommandLinks  = "links"
	CommandMyID   = "myid"
	CommandFunnel = "funnel"
)

// LinksInterval как часто можно показывать блок ссылок без запроса
const LinksInterval = 12 * time.Hour

// Кнопки и значения клавиатур
var (
	PropertyTypes = []string{"Квартира", "Дом", "Вилла"}
	BedroomOptions = [][]string{{"1", "2", "3"}, {"4", "5", "6+"}}
	YesNoOptions   = []string{"Да", "Нет"}
)

const (
	DistrictDone  = "Готово"
	DistrictReset = "Сброс"
)

const resourcesLinks = "<b>📎 Наши ресурсы</b>\n\n" +
	"🌐 Web site — <a href='http://cozy-asiath.com/'>cozy-asiath.com</a>\n" +
	"📣 Telegram — <a href='https://t.me/samuirental'>@samuirental</a>\n" +
	"🏝️ Telegram — <a href='https://t.me/arenda_vill_samui'>@arenda_vill_samui</a>\n" +
	"📸 Instagram — <a href='https://www.instagram.com/cozy.asia'>@cozy.asia</a>\n"

const (
	ResourcesHTML = resourcesLinks

	ResourcesAfterSurveyHTML = resourcesLinks + "\n" +
		"<b>Ваша заявка сформирована и передана менеджерам.</b>\n" +
		"Для оперативной связи переходите в чат с менеджером:\n" +
		"@cozy_asia — Сергей\n" +
		"@Aleksei_Lucky — Алексей"

	StartGreeting = "✅ Я уже тут!\n" +
		"🌴 Можете спросить меня о вашем пребывании на острове — подскажу и помогу.\n" +
		"👉 Или нажмите команду /rent — задам несколько вопросов, сформирую заявку и передам менеджеру."

	CancelText = "Окей, отменил анкету. Можем просто пообщаться или запустить /rent позже."

	CompletingText = "Спасибо! Формирую заявку…"

	RentCallToAction = "👉 Чтобы оформить запрос на подбор — напишите /rent."

	CannedChatReply = "Могу помочь с жильём, жизнью на Самуи, районами и т.д.\n\n" + RentCallToAction

	ChatPersona = "Ты ассистент Cozy Asia (Самуи). Дружелюбен, краток и полезен. " +
		"Отвечай на вопросы о Самуи/аренде/жизни. Если уместно — предложи пройти анкету /rent."

	districtResetText = "Выбор районов очищен. Выберите снова и нажмите «Готово»."
	districtEmptyText = "Пока ничего не выбрано. Выберите один или несколько районов и нажмите «Готово»."
)

func questionNo(state model.State) string {
	return fmt.Sprintf("%d/%d", state.Question(), model.TotalQuestions)
}

// questionPrompt текст вопроса, с которого начинается состояние
func questionPrompt(state model.State, user model.UserIdentity) Reply {
	switch state {
	case model.StateName:
		return Reply{Text: "Запускаю короткую анкету. Вопрос " + questionNo(state) + ":\n" +
			"как вас зовут? (имя и, если удобно, фамилия)\n\n" +
			"Если хотите просто поговорить — задайте вопрос, я отвечу.", HTML: true}
	case model.StateType:
		return Reply{Text: questionNo(state) + ": тип жилья?", Keyboard: KeyboardPropertyType}
	case model.StateDistrict:
		return Reply{Text: questionNo(state) + ": район? (можно несколько: нажимайте по очереди; " +
			"«Готово» — далее; «Сброс» — начать заново)", Keyboard: KeyboardDistricts}
	case model.StateBudget:
		return Reply{Text: questionNo(state) + ": бюджет на месяц в батах (THB). Введите только число, например 50000",
			Keyboard: KeyboardRemove}
	case model.StateBedrooms:
		return Reply{Text: questionNo(state) + ": сколько спален нужно?", Keyboard: KeyboardBedrooms}
	case model.StateCheckIn:
		return Reply{Text: questionNo(state) + ": дата заезда (любой формат: 2026-02-01, 01.02.2026 и т. п.)",
			Keyboard: KeyboardRemove}
	case model.StateCheckOut:
		return Reply{Text: questionNo(state) + ": дата выезда (любой формат)"}
	case model.StateNotes:
		return Reply{Text: questionNo(state) + ": важные условия/примечания (питомцы, бассейн, парковка и т.п.)"}
	case model.StateContact:
		text := questionNo(state) + ": ваши контактные данные (телефон, @username или e-mail)\n" +
			"Важно: Telegram скрывает ваш номер. Пожалуйста, укажите WhatsApp и Telegram — номер телефона или @username."
		if user.Username != "" {
			text += "\nПодсказка: у вас есть @" + user.Username + " — можно отправить его."
		}
		return Reply{Text: text}
	case model.StateTransfer:
		return Reply{Text: questionNo(state) + ": нужен ли вам трансфер? (Да/Нет). Если Да — напишите детали " +
			"(аэропорт/время/кол-во людей/детское кресло).", Keyboard: KeyboardYesNo}
	}
	return Reply{Text: StartGreeting}
}

// lotAcknowledgement строка про лот, пришедший из deep-link
func lotAcknowledgement(lot string) string {
	return "\n\n✅ Лот определён автоматически: <b>" + html.EscapeString(lot) + "</b>"
}

func districtToggleText(action ToggleAction, d model.District, sel model.DistrictSet) string {
	chosen := "пока ничего"
	if len(sel) > 0 {
		chosen = strings.Join(sel.Sorted(), ", ")
	}
	return fmt.Sprintf("%s «%s». Выбрано: %s\nКогда закончите — нажмите «Готово».", action.Label(), d, chosen)
}

// LeadSummary итог анкеты, который видит пользователь
func LeadSummary(lead model.Lead) string {
	return "📝 Заявка сформирована и передана менеджеру.\n\n" +
		"Лот: " + lead.LotID + "\n" +
		"Имя: " + lead.Name + "\n" +
		"Тип: " + lead.PropertyType + "\n" +
		"Район(ы): " + lead.District + "\n" +
		"Спален: " + lead.Bedrooms + "\n" +
		"Бюджет (THB): " + lead.Budget + "\n" +
		"Check-in: " + lead.CheckIn + "\n" +
		"Check-out: " + lead.CheckOut + "\n" +
		"Условия: " + lead.Notes + "\n" +
		"Контакты: " + lead.Contact + "\n" +
		"Трансфер: " + lead.Transfer + "\n\n" +
		"Можно продолжать свободное общение — спрашивайте про районы, сезонность и т.д."
}

func identityText(user model.UserIdentity) string {
	return fmt.Sprintf("chat_id: %d\nuser_id: %d", user.ChatID, user.UserID)
}

// LeadsDigest короткий список последних заявок для админов
func LeadsDigest(rows []model.LeadRow) string {
	if len(rows) == 0 {
		return "Заявок пока нет."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗂 Последние заявки (%d)\n", len(rows))
	for _, r := range rows {
		who := r.Name
		if r.Username != "" {
			who += " @" + r.Username
		}
		fmt.Fprintf(&b, "\n%s UTC | %s\nЛот: %s | %s | %s | %s THB\nКонтакты: %s\n",
			r.CreatedAt.UTC().Format(model.TimestampLayout), who, r.Lot, r.Type, r.District, r.Budget, r.Contact)
	}
	return strings.TrimRight(b.String(), "\n")
}
