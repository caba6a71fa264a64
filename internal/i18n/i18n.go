// Package i18n holds the translation string tables for the four supported
// languages and maps localized menu labels to stable internal actions.
package i18n

import "strings"

// Lang is a supported interface language code.
type Lang string

const (
	Farsi   Lang = "fa"
	English Lang = "en"
	Arabic  Lang = "ar"
	Russian Lang = "ru"
)

// Action is a stable internal identifier for a main-menu item. Inbound text
// is matched against the per-language label tables and mapped to an Action
// before dispatch; raw label strings never drive behavior directly.
type Action int

const (
	ActionNone Action = iota
	ActionServices
	ActionHours
	ActionBook
	ActionAddress
	ActionAsk
)

// MapLink points at the clinic on Google Maps, rendered inside AddressReply.
const MapLink = "https://www.google.com/maps/search/?api=1&query=Gemini+Medical+Center+Dubai+Al+Wasl+Rd+Al+Safa+1"

// Texts is the full translation table for one language.
type Texts struct {
	// MenuRows are the main-menu keyboard rows. Flattened row-major, the
	// labels correspond to menuActions in order.
	MenuRows [][]string

	ShareContact        string
	NamePrompt          string
	WhatsappPrompt      string
	PhonePrompt         string
	UseButtonError      string
	RegComplete         string
	Greeting            string // fmt: user name
	ServicesReply       string
	HoursReply          string
	AddressReply        string
	BookingPrompt       string
	DoctorPrompt        string
	AnyDoctor           string
	TimePrompt          string
	BookingDone         string
	PhotoAnalyzing      string
	PhotoDisclaimer     string
	FileTooLarge        string
	SlotTaken           string
	NoSlots             string
	Cancelled           string
	ReminderMsg         string // fmt: name, date, time
	AskPrompt           string
	NameError           string
	CancelButton        string
	SelectLanguage      string
	PleaseRegisterFirst string
	SelectFromButtons   string
	TypeStartToRegister string
	NotYourContact      string
	AIError             string
	AIConnectionError   string
	BroadcastSent       string
}

// menuActions is the flat row-major order of MenuRows labels.
var menuActions = []Action{ActionServices, ActionHours, ActionBook, ActionAddress, ActionAsk}

var tables = map[Lang]*Texts{
	Farsi: {
		MenuRows:            [][]string{{"خدمات", "ساعات کاری"}, {"رزرو نوبت", "آدرس مرکز"}, {"سوال یا ارسال عکس"}},
		ShareContact:        "📱 ارسال شماره تماس (تأیید هویت)",
		NamePrompt:          "✅ زبان فارسی انتخاب شد.\n\nلطفاً نام و نام خانوادگی خود را تایپ کنید:",
		WhatsappPrompt:      "لطفاً شماره واتساپ خود را بنویسید (مثال: 0912...):",
		PhonePrompt:         "برای تکمیل ثبت‌نام، لطفاً روی دکمه زیر بزنید تا شماره شما تأیید شود:",
		UseButtonError:      "⛔️ لطفاً شماره را تایپ نکنید. حتماً از دکمه «ارسال شماره تماس» در پایین صفحه استفاده کنید.",
		RegComplete:         "ثبت‌نام با موفقیت انجام شد. خوش آمدید 🌹",
		Greeting:            "%s عزیز، ",
		ServicesReply:       "خدمات کلینیک:\n• ایمپلنت و کاشت دندان\n• ارتودنسی\n• لمینت و کامپوزیت\n• جرمگیری و بلیچینگ\n• عصب‌کشی و ترمیم",
		HoursReply:          "ساعات کاری:\nهمه روزه از ساعت ۱۰:۰۰ صبح تا ۲۱:۰۰ شب",
		AddressReply:        "🏥 **Gemini Medical Center**\n\nآدرس:\nدبی، خیابان الوصل، الصفا ۱، پلاک ۶۳۵\n\n📍 [مشاهده در گوگل مپ](" + MapLink + ")",
		BookingPrompt:       "برای چه خدمتی نوبت می‌خواهید؟",
		DoctorPrompt:        "لطفاً پزشک مورد نظر خود را انتخاب کنید:",
		AnyDoctor:           "فرقی نمی‌کند",
		TimePrompt:          "لطفاً یکی از زمان‌های خالی زیر را انتخاب کنید (زمان به وقت دبی):",
		BookingDone:         "✅ نوبت شما با موفقیت رزرو شد. منتظر دیدار شما هستیم.",
		PhotoAnalyzing:      "🖼 در حال بررسی تصویر دندان شما توسط هوش مصنوعی... لطفاً صبر کنید.",
		PhotoDisclaimer:     "\n\n⚠️ توجه: این تحلیل توسط هوش مصنوعی انجام شده و جایگزین تشخیص پزشک نیست.",
		FileTooLarge:        "⚠️ حجم تصویر ارسالی زیاد است. لطفاً تصویر کم‌حجم‌تری بفرستید.",
		SlotTaken:           "متأسفانه این زمان همین الان توسط شخص دیگری رزرو شد. لطفاً زمان دیگری را انتخاب کنید.",
		NoSlots:             "در حال حاضر وقت خالی برای ۷ روز آینده موجود نیست. لطفاً با پذیرش تماس بگیرید.",
		Cancelled:           "عملیات لغو شد.",
		ReminderMsg:         "%s عزیز، یادآوری: شما فردا (%s) ساعت %s نوبت دندانپزشکی دارید.",
		AskPrompt:           "لطفاً سوال خود را بنویسید یا عکس دندان خود را ارسال کنید تا هوش مصنوعی بررسی کند:",
		NameError:           "⛔️ لطفاً روی دکمه‌های زبان کلیک نکنید. نام خود را تایپ کنید:",
		CancelButton:        "لغو",
		SelectLanguage:      "لطفاً زبان را انتخاب کنید:",
		PleaseRegisterFirst: "برای استفاده از ربات، ابتدا دستور /start را ارسال و ثبت‌نام خود را تکمیل کنید.",
		SelectFromButtons:   "لطفاً یکی از گزینه‌های زیر را از دکمه‌ها انتخاب کنید.",
		TypeStartToRegister: "برای شروع، دستور /start را ارسال کنید.",
		NotYourContact:      "⛔️ این شماره متعلق به حساب شما نیست. لطفاً از دکمه ارسال شماره خودتان استفاده کنید.",
		AIError:             "متأسفانه در پردازش هوش مصنوعی خطایی رخ داد. لطفاً بعداً دوباره تلاش کنید.",
		AIConnectionError:   "اتصال به سرویس هوش مصنوعی برقرار نشد. لطفاً چند دقیقه بعد دوباره امتحان کنید.",
		BroadcastSent:       "پیام برای همه کاربران ارسال شد.",
	},
	English: {
		MenuRows:            [][]string{{"Services", "Working Hours"}, {"Book Appointment", "Location"}, {"Question or Photo"}},
		ShareContact:        "📱 Share Contact",
		NamePrompt:          "✅ English selected.\n\nPlease type your Full Name:",
		WhatsappPrompt:      "Please enter your WhatsApp number:",
		PhonePrompt:         "Please tap the button below to verify your phone number:",
		UseButtonError:      "⛔️ Please do not type. Use the 'Share Contact' button below.",
		RegComplete:         "Registration completed successfully. Welcome!",
		Greeting:            "Dear %s, ",
		ServicesReply:       "Our Services:\n• Implants\n• Orthodontics\n• Veneers & Composite\n• Scaling & Whitening\n• Root Canal",
		HoursReply:          "Working Hours:\nDaily from 10:00 AM to 09:00 PM",
		AddressReply:        "🏥 **Gemini Medical Center**\n\nAddress:\nDubai, Al Wasl Rd, Al Safa 1, Bldg 635\n\n📍 [View on Google Maps](" + MapLink + ")",
		BookingPrompt:       "Which service do you need?",
		DoctorPrompt:        "Please select your preferred doctor:",
		AnyDoctor:           "Any Doctor",
		TimePrompt:          "Please select an available slot (Dubai Time):",
		BookingDone:         "✅ Appointment confirmed. We look forward to seeing you.",
		PhotoAnalyzing:      "🖼 Analyzing your dental image with AI... Please wait.",
		PhotoDisclaimer:     "\n\n⚠️ Note: This analysis is AI-generated and is NOT a medical diagnosis.",
		FileTooLarge:        "⚠️ File is too large. Please send a smaller image.",
		SlotTaken:           "Sorry, this slot was just taken. Please choose another time.",
		NoSlots:             "No slots available for the next 7 days. Please call reception.",
		Cancelled:           "Cancelled.",
		ReminderMsg:         "Dear %s, Reminder: You have an appointment tomorrow (%s) at %s.",
		AskPrompt:           "Please type your question or send a dental photo for AI analysis:",
		NameError:           "⛔️ Please do not click the language buttons. Type your name:",
		CancelButton:        "Cancel",
		SelectLanguage:      "Please select a language:",
		PleaseRegisterFirst: "Please send /start and complete registration before using the bot.",
		SelectFromButtons:   "Please select from the buttons below.",
		TypeStartToRegister: "Please type /start to register.",
		NotYourContact:      "⛔️ This contact does not belong to your account. Please send your own contact.",
		AIError:             "An error occurred while processing your request with AI. Please try again later.",
		AIConnectionError:   "Could not connect to the AI service. Please try again in a few minutes.",
		BroadcastSent:       "Message sent to all users.",
	},
	Arabic: {
		MenuRows:            [][]string{{"الخدمات", "ساعات العمل"}, {"حجز موعد", "العنوان"}, {"سؤال أو صورة"}},
		ShareContact:        "📱 مشاركة رقم الهاتف",
		NamePrompt:          "✅ تم اختيار العربية.\n\nالرجاء كتابة اسمك الكامل:",
		WhatsappPrompt:      "الرجاء إدخال رقم الواتساب:",
		PhonePrompt:         "الرجاء الضغط على الزر أدناه لتأكيد رقم هاتفك:",
		UseButtonError:      "⛔️ الرجاء عدم الكتابة. استخدم زر 'مشاركة رقم الهاتف'.",
		RegComplete:         "تم التسجيل بنجاح. أهلاً بك!",
		Greeting:            "عزيزي %s، ",
		ServicesReply:       "خدماتنا:\n• زراعة الأسنان\n• تقويم الأسنان\n• القشور الخزفية\n• تنظيف وتبييض الأسنان\n• علاج الجذور",
		HoursReply:          "ساعات العمل:\nيومياً من ١٠ صباحاً حتى ٩ مساءً",
		AddressReply:        "🏥 **Gemini Medical Center**\n\nالعنوان:\nدبي، شارع الوصل، الصفا ١، مبنى ٦٣٥\n\n📍 [عرض على خريطة جوجل](" + MapLink + ")",
		BookingPrompt:       "ما هي الخدمة المطلوبة؟",
		DoctorPrompt:        "الرجاء اختيار الطبيب المفضل:",
		AnyDoctor:           "أي طبيب",
		TimePrompt:          "الرجاء اختيار وقت من الأوقات المتاحة (توقيت دبي):",
		BookingDone:         "✅ تم تأكيد الحجز. ننتظر زیارتكم.",
		PhotoAnalyzing:      "🖼 جاري تحليل الصورة بالذكاء الاصطناعي...",
		PhotoDisclaimer:     "\n\n⚠️ ملاحظة: هذا تحليل ذكي ولا يعتبر تشخیصاً طبیاً.",
		FileTooLarge:        "⚠️ الملف كبير جداً. الرجاء إرسال صورة أصغر.",
		SlotTaken:           "عذراً، تم حجز هذا الموعد للتو. اختر وقتاً آخر.",
		NoSlots:             "لا توجد مواعيد متاحة للأيام السبعة القادمة. الرجاء الاتصال بالاستقبال.",
		Cancelled:           "تم الإلغاء.",
		ReminderMsg:         "عزيزي %s، تذكير: لديك موعد غداً (%s) الساعة %s.",
		AskPrompt:           "الرجاء كتابة سؤالك أو إرسال صورة للأسنان للتحليل بالذكاء الاصطناعي:",
		NameError:           "⛔️ الرجاء عدم الضغط على الأزرار. اكتب اسمك:",
		CancelButton:        "إلغاء",
		SelectLanguage:      "من فضلك اختر اللغة:",
		PleaseRegisterFirst: "الرجاء إرسال /start وإكمال التسجيل قبل استخدام البوت.",
		SelectFromButtons:   "الرجاء الاختيار من الأزرار أدناه.",
		TypeStartToRegister: "الرجاء كتابة /start لبدء التسجيل.",
		NotYourContact:      "⛔️ هذا الرقم لا يخص حسابك. الرجاء إرسال رقمك الشخصي.",
		AIError:             "حدث خطأ أثناء معالجة طلبك بالذكاء الاصطناعي. الرجاء المحاولة لاحقاً.",
		AIConnectionError:   "تعذر الاتصال بخدمة الذكاء الاصطناعي. الرجاء المحاولة بعد قليل.",
		BroadcastSent:       "تم إرسال الرسالة إلى جميع المستخدمين.",
	},
	Russian: {
		MenuRows:            [][]string{{"Услуги", "Часы работы"}, {"Записаться", "Адрес"}, {"Вопрос или Фото"}},
		ShareContact:        "📱 Отправить контакт",
		NamePrompt:          "✅ Русский язык выбран.\n\nПожалуйста, введите ваше полное имя:",
		WhatsappPrompt:      "Введите ваш номер WhatsApp:",
		PhonePrompt:         "Нажмите кнопку ниже, чтобы подтвердить ваш номер:",
		UseButtonError:      "⛔️ Пожалуйста, не печатайте. Используйте кнопку «Отправить контакт».",
		RegComplete:         "Регистрация успешно завершена. Добро пожаловать!",
		Greeting:            "Уважаемый(ая) %s, ",
		ServicesReply:       "Наши услуги:\n• Имплантация\n• Ортодонтия\n• Виниры\n• Чистка и отбеливание\n• Лечение каналов",
		HoursReply:          "Часы работы:\nЕжедневно с 10:00 до 21:00",
		AddressReply:        "🏥 **Gemini Medical Center**\n\nАдрес:\nДубай, Аль Васл Роуд, Аль Сафа 1, здание 635\n\n📍 [Посмотреть на Google Maps](" + MapLink + ")",
		BookingPrompt:       "Какая услуга вам нужна?",
		DoctorPrompt:        "Выберите врача:",
		AnyDoctor:           "Любой врач",
		TimePrompt:          "Выберите свободное время (время Дубая):",
		BookingDone:         "✅ Ваша запись подтверждена.",
		PhotoAnalyzing:      "🖼 ИИ анализирует ваш снимок... Пожалуйста, подождите.",
		PhotoDisclaimer:     "\n\n⚠️ Примечание: Это анализ ИИ, а не медицинский диагноз.",
		FileTooLarge:        "⚠️ Файл слишком большой. Пожалуйста, отправьте меньший файл.",
		SlotTaken:           "К сожалению, это время уже занято. Выберите другое.",
		NoSlots:             "Нет свободного времени на ближайшие 7 дней.",
		Cancelled:           "Отменено.",
		ReminderMsg:         "Уважаемый(ая) %s, напоминание: у вас прием завтра (%s) в %s.",
		AskPrompt:           "Пожалуйста, напишите вопрос или отправьте фото зубов для анализа ИИ:",
		NameError:           "⛔️ Не нажимайте кнопки. Введите имя:",
		CancelButton:        "Отмена",
		SelectLanguage:      "Пожалуйста, выберите язык:",
		PleaseRegisterFirst: "Пожалуйста, отправьте /start и завершите регистрацию перед использованием бота.",
		SelectFromButtons:   "Пожалуйста, выберите один из вариантов ниже.",
		TypeStartToRegister: "Пожалуйста, отправьте /start для регистрации.",
		NotYourContact:      "⛔️ Этот контакт не принадлежит вашему аккаунту. Отправьте свой собственный контакт.",
		AIError:             "Произошла ошибка при обработке вашего запроса ИИ. Попробуйте позже.",
		AIConnectionError:   "Не удалось подключиться к сервису ИИ. Попробуйте еще раз через несколько минут.",
		BroadcastSent:       "Сообщение отправлено всем пользователям.",
	},
}

// langNames are the English language names used when asking the AI to answer
// in the user's language.
var langNames = map[Lang]string{
	Farsi:   "Persian",
	English: "English",
	Arabic:  "Arabic",
	Russian: "Russian",
}

// selectorLabels are the language-selector keyboard labels shown on /start.
var selectorLabels = []string{"فارسی / Farsi", "English", "العربية / Arabic", "Русский / Russian"}

// Supported returns the supported language codes.
func Supported() []Lang {
	return []Lang{Farsi, English, Arabic, Russian}
}

// T returns the translation table for a language, falling back to English
// for unknown codes.
func T(lang Lang) *Texts {
	if t, ok := tables[lang]; ok {
		return t
	}
	return tables[English]
}

// LangName returns the English name of a language for AI prompts.
func LangName(lang Lang) string {
	if name, ok := langNames[lang]; ok {
		return name
	}
	return "English"
}

// SelectorLabels returns the language-selector keyboard labels.
func SelectorLabels() []string {
	return selectorLabels
}

// IsSelectorLabel reports whether the text exactly matches one of the
// language-selector labels. The name step uses this to catch stale keyboard
// taps that would otherwise be stored as a name.
func IsSelectorLabel(text string) bool {
	for _, label := range selectorLabels {
		if strings.TrimSpace(text) == label {
			return true
		}
	}
	return false
}

// MatchLanguageSelection maps a language-selector tap (or a close enough
// free-text rendition) to a language code.
func MatchLanguageSelection(text string) (Lang, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "فارسی"):
		return Farsi, true
	case strings.Contains(lower, "english"):
		return English, true
	case strings.Contains(lower, "arabic") || strings.Contains(text, "العربية"):
		return Arabic, true
	case strings.Contains(lower, "russian") || strings.Contains(lower, "русский"):
		return Russian, true
	}
	return "", false
}

// MenuAction maps inbound text to a main-menu action for one language.
func MenuAction(lang Lang, text string) (Action, bool) {
	i := 0
	for _, row := range T(lang).MenuRows {
		for _, label := range row {
			if text == label {
				return menuActions[i], true
			}
			i++
		}
	}
	return ActionNone, false
}

// IsMenuLabel reports whether the text matches a main-menu label in any
// supported language. The engine uses this as its global interceptor: a
// menu tap abandons whatever flow is in progress.
func IsMenuLabel(text string) bool {
	for lang := range tables {
		if _, ok := MenuAction(lang, text); ok {
			return true
		}
	}
	return false
}

// IsCancel reports whether the text is the cancel token for the language,
// compared case-insensitively.
func IsCancel(lang Lang, text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), T(lang).CancelButton)
}
