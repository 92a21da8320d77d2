package i18n

// Translator retrieves localized labels for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "range").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "icd_syntax":
			return "ICD構文エラー"
		case "data_format":
			return "データ形式エラー"
		case "row_structure":
			return "行構造エラー"
		case "char_outside_set":
			return "許可されていない文字です"
		case "empty_value":
			return "空の値は許可されていません"
		case "length_out_of_range":
			return "長さが範囲外です"
		case "parse_error":
			return "解析エラー"
		case "value_range":
			return "値が範囲外です"
		case "invalid_enum":
			return "選択肢にない値です"
		case "datetime_mismatch":
			return "日時形式が一致しません"
		case "pattern_mismatch":
			return "パターンが一致しません"
		case "regex_mismatch":
			return "正規表現が一致しません"
		case "distinct_count":
			return "異なり数の制限を超えました"
		case "not_unique":
			return "値が重複しています"
		}
	default: // "en"
		switch code {
		case "icd_syntax":
			return "ICD syntax error"
		case "data_format":
			return "data format error"
		case "row_structure":
			return "row structure error"
		case "char_outside_set":
			return "character not allowed"
		case "empty_value":
			return "empty value not allowed"
		case "length_out_of_range":
			return "length out of range"
		case "parse_error":
			return "parse error"
		case "value_range":
			return "value out of range"
		case "invalid_enum":
			return "value not in choice list"
		case "datetime_mismatch":
			return "date/time mismatch"
		case "pattern_mismatch":
			return "pattern mismatch"
		case "regex_mismatch":
			return "regular expression mismatch"
		case "distinct_count":
			return "distinct count limit exceeded"
		case "not_unique":
			return "duplicate value"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a label for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
