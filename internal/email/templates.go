package email

import (
	"fmt"
	"html"
)

func ConfirmEmail(from, to, link string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "Please confirm your e-mail address",
		HTML: fmt.Sprintf(
			"Hi. To get up and running, you'll just need to click <a href='%s'>here</a> to confirm your email address.",
			html.EscapeString(link),
		),
	}
}

func ResendConfirmation(from, to, link string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "Confirm your email",
		HTML:    fmt.Sprintf("Please confirm your account by clicking <a href='%s'>here</a>.", html.EscapeString(link)),
	}
}

func ForgotPassword(from, to, link string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "Forgot your password? We can help.",
		HTML: fmt.Sprintf(
			"Hi, <br /> Did you forget your password? No worries. Click the link to reset your password <a href='%s'>here</a>.",
			html.EscapeString(link),
		),
	}
}

func PasswordChanged(from, to string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "Password Change",
		HTML: "Hey. We're just confirming that you recently changed your password. " +
			"If you updated your password, you can ignore this message. " +
			"If your password was changed without your permission, please contact us immediately.",
	}
}
