package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	keyWelcomeSubject  = "onboarding.welcome.subject"
	keyWelcomeGreeting = "onboarding.welcome.greeting"
	keyWelcomeThanks   = "onboarding.welcome.thanks"
	keyWelcomePortal   = "onboarding.welcome.portal"
	keyWelcomeCTA      = "onboarding.welcome.cta"
	keyWelcomeSignoff  = "onboarding.welcome.signoff"
)

var supported = []language.Tag{language.English, language.MustParse("pt-BR")}

var matcher = language.NewMatcher(supported)

func init() {
	en := language.English
	message.SetString(en, keyWelcomeSubject, "Welcome to %s!")
	message.SetString(en, keyWelcomeGreeting, "Hi %s,")
	message.SetString(en, keyWelcomeThanks, "Thank you for completing your onboarding with us! We're excited to start working with you.")
	message.SetString(en, keyWelcomePortal, "Your account has been set up. Your client portal lets you follow projects, tasks and invoices.")
	message.SetString(en, keyWelcomeCTA, "Access Client Portal")
	message.SetString(en, keyWelcomeSignoff, "Best regards, %s Team")

	pt := language.MustParse("pt-BR")
	message.SetString(pt, keyWelcomeSubject, "Boas-vindas à %s!")
	message.SetString(pt, keyWelcomeGreeting, "Olá %s,")
	message.SetString(pt, keyWelcomeThanks, "Obrigado por concluir seu onboarding conosco! Estamos animados para começar a trabalhar com você.")
	message.SetString(pt, keyWelcomePortal, "Sua conta foi configurada. No portal do cliente você acompanha projetos, tarefas e faturas.")
	message.SetString(pt, keyWelcomeCTA, "Acessar o portal do cliente")
	message.SetString(pt, keyWelcomeSignoff, "Atenciosamente, equipe %s")
}

// matchLanguage picks the closest supported catalog language, English when
// locale is empty or unparsable.
func matchLanguage(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}
