package i18n

import (
	"fmt"
	"strings"

	"github.com/handmade-market/internal/constants"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 站点语言
const (
	LocaleZH = constants.LocaleZhCN
	LocaleTW = constants.LocaleZhTW
	LocaleEN = constants.LocaleEnUS
)

// 匹配器的候选顺序与 SupportedLocales 一致，首项为默认语言
var matcher = language.NewMatcher([]language.Tag{
	language.SimplifiedChinese,
	language.TraditionalChinese,
	language.AmericanEnglish,
})

var matchedLocales = constants.SupportedLocales

// ResolveLocale 按 ?lang 参数、X-Locale 头、Accept-Language 的顺序解析请求语言
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return LocaleZH
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return Match(lang)
	}
	if lang := strings.TrimSpace(c.GetHeader("X-Locale")); lang != "" {
		return Match(lang)
	}
	return Match(c.GetHeader("Accept-Language"))
}

// Match 将任意语言标签归一为支持的站点语言
func Match(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LocaleZH
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return LocaleZH
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(matchedLocales) {
		return LocaleZH
	}
	return matchedLocales[index]
}

// T 翻译消息；当前语言缺失时回退到默认语言，仍缺失返回 key
func T(locale, key string) string {
	if msg, ok := lookup(locale, key); ok {
		return msg
	}
	if msg, ok := lookup(LocaleZH, key); ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func lookup(locale, key string) (string, bool) {
	table, ok := messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok
}
