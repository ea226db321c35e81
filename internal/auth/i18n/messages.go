// Package i18n содержит каталог пользовательских сообщений сервиса на иврите и английском.
package i18n

import (
	"golang.org/x/text/language"
)

// Key - ключ сообщения в каталоге.
type Key string

// Ключи сообщений.
const (
	MissingFields        Key = "missing_fields"
	EmailAlreadyExists   Key = "email_already_exists"
	SignupSuccess        Key = "signup_success"
	UserNotFound         Key = "user_not_found"
	IncorrectPassword    Key = "incorrect_password"
	LoginSuccess         Key = "login_success"
	EmailNotFound        Key = "email_not_found"
	ResetEmailSent       Key = "reset_email_sent"
	ErrorSending         Key = "error_sending"
	InvalidOrExpiredLink Key = "invalid_or_expired_link"
	ResetSuccess         Key = "reset_success"
	ServerError          Key = "server_error"
	AccessDenied         Key = "access_denied"
	InvalidToken         Key = "invalid_token"
	Welcome              Key = "welcome"
	PasswordReset        Key = "password_reset"
	PasswordResetRequest Key = "password_reset_request"
	ClickLinkToReset     Key = "click_link_to_reset"
	LinkExpiresIn10Min   Key = "link_expires_in_10min"
	RouteNotFound        Key = "route_not_found"
	PasswordTooLong      Key = "password_too_long"
	OK                   Key = "ok"
)

// Поддерживаемые языки. Иврит - язык по умолчанию.
const (
	Hebrew  = "he"
	English = "en"
)

var matcher = language.NewMatcher([]language.Tag{language.Hebrew, language.English})

var catalog = map[string]map[Key]string{
	English: {
		MissingFields:        "Please fill in all required fields",
		EmailAlreadyExists:   "Email already exists",
		SignupSuccess:        "Signup completed successfully",
		UserNotFound:         "User not found",
		IncorrectPassword:    "Incorrect password",
		LoginSuccess:         "Logged in successfully",
		EmailNotFound:        "Email not found",
		ResetEmailSent:       "A password reset link has been sent to your email",
		ErrorSending:         "Error sending the email",
		InvalidOrExpiredLink: "The link is invalid or has expired",
		ResetSuccess:         "Password has been reset successfully",
		ServerError:          "Server error",
		AccessDenied:         "Access denied",
		InvalidToken:         "Invalid token",
		Welcome:              "Welcome",
		PasswordReset:        "Password reset",
		PasswordResetRequest: "Password reset request",
		ClickLinkToReset:     "Click the link below to reset your password:",
		LinkExpiresIn10Min:   "The link expires in 10 minutes.",
		RouteNotFound:        "Route not found",
		PasswordTooLong:      "Password is too long",
		OK:                   "ok",
	},
	Hebrew: {
		MissingFields:        "נא למלא את כל השדות",
		EmailAlreadyExists:   "האימייל כבר קיים במערכת",
		SignupSuccess:        "ההרשמה בוצעה בהצלחה",
		UserNotFound:         "המשתמש לא נמצא",
		IncorrectPassword:    "סיסמה שגויה",
		LoginSuccess:         "התחברת בהצלחה",
		EmailNotFound:        "האימייל לא נמצא",
		ResetEmailSent:       "קישור לאיפוס סיסמה נשלח לאימייל שלך",
		ErrorSending:         "שגיאה בשליחת האימייל",
		InvalidOrExpiredLink: "הקישור אינו תקף או שפג תוקפו",
		ResetSuccess:         "הסיסמה אופסה בהצלחה",
		ServerError:          "שגיאת שרת",
		AccessDenied:         "הגישה נדחתה",
		InvalidToken:         "טוקן לא תקף",
		Welcome:              "ברוך הבא",
		PasswordReset:        "איפוס סיסמה",
		PasswordResetRequest: "בקשה לאיפוס סיסמה",
		ClickLinkToReset:     "לחץ על הקישור הבא כדי לאפס את הסיסמה:",
		LinkExpiresIn10Min:   "הקישור יפוג בעוד 10 דקות.",
		RouteNotFound:        "הנתיב לא נמצא",
		PasswordTooLong:      "הסיסמה ארוכה מדי",
		OK:                   "ok",
	},
}

// Match выбирает язык по значению заголовка Accept-Language.
func Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return Hebrew
	}
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	if base.String() == English {
		return English
	}
	return Hebrew
}

// T возвращает текст сообщения для языка, при отсутствии перевода - ключ.
func T(lang string, key Key) string {
	messages, ok := catalog[lang]
	if !ok {
		messages = catalog[Hebrew]
	}
	if msg, ok := messages[key]; ok {
		return msg
	}
	return string(key)
}
