// ReelMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package identity

import (
	"regexp"

	"github.com/abadojack/whatlanggo"
)

// Locales used for metadata searches.
const (
	LocaleChinese  = "zh-CN"
	LocaleEnglish  = "en-US"
	LocaleJapanese = "ja-JP"
	LocaleKorean   = "ko-KR"

	// LanguageUnknown is reported when detection fails or yields a
	// language without a locale.
	LanguageUnknown = "unknown"
)

var cjkIdeograph = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)

var localeByLanguage = map[string]string{
	"zh":            LocaleChinese,
	"en":            LocaleEnglish,
	"ja":            LocaleJapanese,
	"ko":            LocaleKorean,
	LanguageUnknown: LocaleChinese,
}

// DetectLanguage returns the ISO 639-1 code of text when it has a search
// locale, else LanguageUnknown. Any CJK ideograph means Chinese, ahead of
// statistical detection.
func DetectLanguage(text string) string {
	if cjkIdeograph.MatchString(text) {
		return "zh"
	}
	lang := whatlanggo.DetectLang(text).Iso6391()
	if _, ok := localeByLanguage[lang]; ok {
		return lang
	}
	return LanguageUnknown
}

// LocaleFor returns the search locale for a language code. Unknown
// languages search in Chinese, the catalog's primary metadata language.
func LocaleFor(lang string) string {
	if locale, ok := localeByLanguage[lang]; ok {
		return locale
	}
	return LocaleChinese
}

// AlternateLocale is the second locale searched when the primary one
// returns too few candidates.
func AlternateLocale(primary string) string {
	if primary != LocaleChinese {
		return LocaleChinese
	}
	return LocaleEnglish
}
