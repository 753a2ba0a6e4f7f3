package i18n

import "golang.org/x/text/language"

// Message keys. Each key is also the English text.
const (
	KeyHeader      = "Tag analysis for file: %s"
	KeyOpen        = "open"
	KeyClosed      = "closed"
	KeyDifference  = "difference"
	KeyNotFound    = "Error: file '%s' not found!"
	KeyTag         = "tag"
	KeyStatus      = "status"
	KeyBalanced    = "balanced"
	KeyUnbalanced  = "unbalanced"
	KeyReportTitle = "Tag Balance Report"
	KeyAllBalanced = "All recognized tags are balanced."
	KeyUnbalancedN = "Unbalanced tags: %s"
	KeyNoTags      = "No recognized tags found."
	KeyChartTitle  = "Tag balance"
)

// translations maps a key to its text per non-English language.
var translations = map[string]map[language.Tag]string{
	KeyHeader:      {language.Russian: "Анализ тегов для файла: %s"},
	KeyOpen:        {language.Russian: "открыт"},
	KeyClosed:      {language.Russian: "закрыт"},
	KeyDifference:  {language.Russian: "разница"},
	KeyNotFound:    {language.Russian: "Ошибка: Файл '%s' не найден!"},
	KeyTag:         {language.Russian: "тег"},
	KeyStatus:      {language.Russian: "статус"},
	KeyBalanced:    {language.Russian: "сбалансирован"},
	KeyUnbalanced:  {language.Russian: "не сбалансирован"},
	KeyReportTitle: {language.Russian: "Отчёт о парности тегов"},
	KeyAllBalanced: {language.Russian: "Все распознанные теги сбалансированы."},
	KeyUnbalancedN: {language.Russian: "Несбалансированные теги: %s"},
	KeyNoTags:      {language.Russian: "Распознанные теги не найдены."},
	KeyChartTitle:  {language.Russian: "Парность тегов"},
}
