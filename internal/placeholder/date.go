package placeholder

import "golang.org/x/text/language"

var dateLocales = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.BrazilianPortuguese, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
	{language.Japanese, "2006/1/2"},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLocales))
	for i, l := range dateLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// dateLayout picks the short date layout closest to locale.
func dateLayout(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return dateLocales[0].layout
	}
	_, idx, conf := dateMatcher.Match(tag)
	if conf == language.No {
		return dateLocales[0].layout
	}
	return dateLocales[idx].layout
}
