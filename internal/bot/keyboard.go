package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/villa_bot/internal/model"
	"github.com/ivanoskov/villa_bot/internal/service"
)

func buttonRow(labels ...string) []tgbotapi.KeyboardButton {
	buttons := make([]tgbotapi.KeyboardButton, 0, len(labels))
	for _, l := range labels {
		buttons = append(buttons, tgbotapi.NewKeyboardButton(l))
	}
	return tgbotapi.NewKeyboardButtonRow(buttons...)
}

func oneTimeKeyboard(rows ...[]tgbotapi.KeyboardButton) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func getPropertyTypeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return oneTimeKeyboard(buttonRow(service.PropertyTypes...))
}

// getDistrictsKeyboard районы по три в ряд и строка Готово/Сброс.
// Клавиатура не скрывается после нажатия: районов можно выбрать несколько.
func getDistrictsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(model.Districts)/3+2)
	for i := 0; i < len(model.Districts); i += 3 {
		end := min(i+3, len(model.Districts))
		labels := make([]string, 0, 3)
		for _, d := range model.Districts[i:end] {
			labels = append(labels, string(d))
		}
		rows = append(rows, buttonRow(labels...))
	}
	rows = append(rows, buttonRow(service.DistrictDone, service.DistrictReset))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func getBedroomsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(service.BedroomOptions))
	for _, r := range service.BedroomOptions {
		rows = append(rows, buttonRow(r...))
	}
	return oneTimeKeyboard(rows...)
}

func getYesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return oneTimeKeyboard(buttonRow(service.YesNoOptions...))
}

// replyMarkup переводит клавиатуру ответа в разметку Telegram; nil: не менять
func replyMarkup(k service.Keyboard) interface{} {
	switch k {
	case service.KeyboardRemove:
		return tgbotapi.NewRemoveKeyboard(true)
	case service.KeyboardPropertyType:
		return getPropertyTypeKeyboard()
	case service.KeyboardDistricts:
		return getDistrictsKeyboard()
	case service.KeyboardBedrooms:
		return getBedroomsKeyboard()
	case service.KeyboardYesNo:
		return getYesNoKeyboard()
	}
	return nil
}
