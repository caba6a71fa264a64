package i18n

import "github.com/go-telegram/bot/models"

// Doctors lists the clinic's bookable doctors. The doctor keyboard appends
// the language's "any doctor" label as a final row.
var Doctors = []string{"Dr. Sara Ahmadi", "Dr. Reza Karimi", "Dr. Elena Petrova"}

// LanguageKeyboard builds the language-selector keyboard shown on /start.
func LanguageKeyboard() *models.ReplyKeyboardMarkup {
	labels := SelectorLabels()
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: labels[0]}, {Text: labels[1]}},
			{{Text: labels[2]}, {Text: labels[3]}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// ContactKeyboard builds the single-button keyboard that requests the user's
// platform-verified contact.
func ContactKeyboard(lang Lang) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: T(lang).ShareContact, RequestContact: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// MainKeyboard builds the persistent main menu for a language.
func MainKeyboard(lang Lang) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(T(lang).MenuRows))
	for _, row := range T(lang).MenuRows {
		buttons := make([]models.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, models.KeyboardButton{Text: label})
		}
		rows = append(rows, buttons)
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}

// DoctorsKeyboard builds the doctor-selection keyboard, one doctor per row
// plus the localized "any doctor" option.
func DoctorsKeyboard(lang Lang) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(Doctors)+1)
	for _, doctor := range Doctors {
		rows = append(rows, []models.KeyboardButton{{Text: doctor}})
	}
	rows = append(rows, []models.KeyboardButton{{Text: T(lang).AnyDoctor}})
	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// SlotsKeyboard builds the slot-selection keyboard from slot labels, two per
// row, with a localized cancel row at the bottom.
func SlotsKeyboard(lang Lang, labels []string) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(labels)/2+2)
	for i := 0; i < len(labels); i += 2 {
		row := []models.KeyboardButton{{Text: labels[i]}}
		if i+1 < len(labels) {
			row = append(row, models.KeyboardButton{Text: labels[i+1]})
		}
		rows = append(rows, row)
	}
	rows = append(rows, []models.KeyboardButton{{Text: T(lang).CancelButton}})
	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// CancelKeyboard builds a keyboard with only the localized cancel button,
// shown on free-text flow steps.
func CancelKeyboard(lang Lang) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: T(lang).CancelButton}},
		},
		ResizeKeyboard: true,
	}
}

// RemoveKeyboard hides whatever reply keyboard is currently shown.
func RemoveKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}
